package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

type ReservationRepo struct{ s *state }

func sameOccurrence(a model.Reservation, classID uint64, day time.Time, slot string, scope repository.BookingScope) bool {
	if a.ClassID != classID || a.Status != model.ReservationActive || !a.Date.Equal(day) {
		return false
	}
	return scope == repository.ScopeDate || a.Time == slot
}

func (r *ReservationRepo) Book(_ context.Context, res *model.Reservation, scope repository.BookingScope) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res.Date = repository.Day(res.Date)
	c, ok := r.s.classes[res.ClassID]
	if !ok || !c.Active {
		return repository.ErrNotFound
	}
	taken := 0
	for _, other := range r.s.reservations {
		if !sameOccurrence(other, res.ClassID, res.Date, res.Time, scope) {
			continue
		}
		if other.UserID == res.UserID {
			return repository.ErrAlreadyReserved
		}
		taken++
	}
	if taken >= c.Capacity {
		return repository.ErrClassFull
	}
	res.ClassName = c.Name
	res.Status = model.ReservationActive
	res.CreatedAt = now()
	res.ID = r.s.nextID()
	r.s.reservations[res.ID] = *res
	return nil
}

func (r *ReservationRepo) CountActive(_ context.Context, classID uint64, date time.Time, slot string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	scope := repository.ScopeSlot
	if slot == "" {
		scope = repository.ScopeDate
	}
	day := repository.Day(date)
	n := 0
	for _, res := range r.s.reservations {
		if sameOccurrence(res, classID, day, slot, scope) {
			n++
		}
	}
	return n, nil
}

func (r *ReservationRepo) ListUpcoming(_ context.Context, userID uint64, from time.Time) ([]model.ReservationWithClass, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := repository.Day(from)
	var out []model.ReservationWithClass
	for _, res := range r.s.reservations {
		if res.UserID != userID || res.Status != model.ReservationActive || res.Date.Before(day) {
			continue
		}
		rc := model.ReservationWithClass{Reservation: res}
		if c, ok := r.s.classes[res.ClassID]; ok {
			rc.Instructor, rc.Duration, rc.Color = c.Instructor, c.Duration, c.Color
		}
		out = append(out, rc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *ReservationRepo) Cancel(_ context.Context, id, userID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok || res.UserID != userID || res.Status != model.ReservationActive {
		return repository.ErrNotFound
	}
	res.Status = model.ReservationCancelled
	r.s.reservations[id] = res
	return nil
}

func (r *ReservationRepo) DeleteBefore(_ context.Context, day time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cutoff := repository.Day(day)
	var n int64
	for id, res := range r.s.reservations {
		if res.Date.Before(cutoff) {
			delete(r.s.reservations, id)
			n++
		}
	}
	return n, nil
}

func (r *ReservationRepo) CountsForUser(_ context.Context, userID uint64, today time.Time) (model.ReservationCounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := repository.Day(today)
	var c model.ReservationCounts
	for _, res := range r.s.reservations {
		if res.UserID != userID {
			continue
		}
		c.Total++
		if res.Status != model.ReservationActive {
			continue
		}
		if res.Date.Before(day) {
			c.Completed++
		} else {
			c.Upcoming++
		}
	}
	return c, nil
}

func (r *ReservationRepo) CountAllActive(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, res := range r.s.reservations {
		if res.Status == model.ReservationActive {
			n++
		}
	}
	return n, nil
}

func (r *ReservationRepo) TopClasses(_ context.Context, limit int) ([]model.ClassCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int{}
	for _, res := range r.s.reservations {
		if res.Status == model.ReservationActive {
			counts[res.ClassName]++
		}
	}
	out := make([]model.ClassCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, model.ClassCount{ClassName: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ClassName < out[j].ClassName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
