package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

type UserRepo struct{ s *state }

func (r *UserRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertUser(u)
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = normEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (r *UserRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.User
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *UserRepo) Update(_ context.Context, u model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Email = normEmail(u.Email)
	if r.s.emailTaken(u.Email, u.ID) {
		return repository.ErrEmailExists
	}
	cur.FullName, cur.Email, cur.Phone, cur.Role, cur.Status = u.FullName, u.Email, u.Phone, u.Role, u.Status
	r.s.users[u.ID] = cur
	return nil
}

// Delete mirrors the MySQL cascade: reservations, cart, memberships and
// notifications of the user go with it.
func (r *UserRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	delete(r.s.carts, id)
	for rid, res := range r.s.reservations {
		if res.UserID == id {
			delete(r.s.reservations, rid)
		}
	}
	for mid, m := range r.s.memberships {
		if m.UserID == id {
			delete(r.s.memberships, mid)
		}
	}
	for nid, n := range r.s.notifications {
		if n.UserID == id {
			delete(r.s.notifications, nid)
		}
	}
	return nil
}

func (r *UserRepo) CountByRole(_ context.Context, role string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *UserRepo) RegistrationsByMonth(_ context.Context, since time.Time) ([]model.MonthCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	type ym struct{ y, m int }
	counts := map[ym]int{}
	for _, u := range r.s.users {
		if u.Role != model.RoleUser || u.CreatedAt.Before(since) {
			continue
		}
		counts[ym{u.CreatedAt.Year(), int(u.CreatedAt.Month())}]++
	}
	out := make([]model.MonthCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.MonthCount{Year: k.y, Month: k.m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}
