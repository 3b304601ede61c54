package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

type NotificationRepo struct{ s *state }

func (r *NotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	n.ID = r.s.nextID()
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepo) ListRecent(_ context.Context, userID uint64, limit int) ([]model.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepo) CountUnread(_ context.Context, userID uint64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.Read {
			c++
		}
	}
	return c, nil
}

func (r *NotificationRepo) HasUnread(_ context.Context, userID uint64, typ string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.UserID == userID && n.Type == typ && !n.Read {
			return true, nil
		}
	}
	return false, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id, userID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	r.s.notifications[id] = n
	return nil
}
