package memory

import (
	"context"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

type ClassRepo struct{ s *state }

func (r *ClassRepo) List(_ context.Context, activeOnly bool) ([]model.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Class
	for _, id := range sortedKeys(r.s.classes) {
		c := r.s.classes[id]
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, cloneClass(c))
	}
	return out, nil
}

func (r *ClassRepo) GetByID(_ context.Context, id uint64) (model.Class, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.classes[id]
	if !ok {
		return model.Class{}, repository.ErrNotFound
	}
	return cloneClass(c), nil
}

func (r *ClassRepo) Create(_ context.Context, c *model.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now()
	}
	c.ID = r.s.nextID()
	r.s.classes[c.ID] = cloneClass(*c)
	return nil
}

func (r *ClassRepo) Update(_ context.Context, c model.Class) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.classes[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.CreatedAt = cur.CreatedAt
	r.s.classes[c.ID] = cloneClass(c)
	return nil
}

func (r *ClassRepo) Deactivate(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.classes[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Active = false
	r.s.classes[id] = c
	return nil
}

func (r *ClassRepo) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.classes), nil
}
