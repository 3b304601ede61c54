package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

type CartRepo struct{ s *state }

// ensureCart must be called with the lock held.
func (s *state) ensureCart(userID uint64) *model.Cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &model.Cart{ID: s.nextID(), UserID: userID, Items: []model.CartItem{}, UpdatedAt: now()}
		s.carts[userID] = c
	}
	return c
}

func (r *CartRepo) Get(_ context.Context, userID uint64) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return cloneCart(r.s.ensureCart(userID)), nil
}

func (r *CartRepo) AddItem(_ context.Context, userID uint64, item model.CartItem) (model.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.s.ensureCart(userID)
	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		item.Quantity = 1
		c.Items = append(c.Items, item)
	}
	c.UpdatedAt = now()
	return cloneCart(c), nil
}

type OrderRepo struct{ s *state }

func (r *OrderRepo) PlaceFromCart(_ context.Context, userID uint64, price repository.PriceFunc) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[userID]
	if !ok || len(c.Items) == 0 {
		return model.Order{}, repository.ErrEmptyCart
	}
	o, err := price(cloneCart(c))
	if err != nil {
		return model.Order{}, err
	}
	o.UserID = userID
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now()
	}
	o.ID = r.s.nextID()
	o.Items = append([]model.CartItem(nil), o.Items...)
	r.s.orders[o.ID] = o
	c.Items = []model.CartItem{}
	c.UpdatedAt = now()
	return o, nil
}

func (r *OrderRepo) filter(keep func(model.Order) bool) []model.Order {
	var out []model.Order
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *OrderRepo) ListByUser(_ context.Context, userID uint64, limit int) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.filter(func(o model.Order) bool { return o.UserID == userID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *OrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(model.Order) bool { return true }), nil
}

func (r *OrderRepo) GetByID(_ context.Context, id uint64) (model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (r *OrderRepo) SummarySince(_ context.Context, since time.Time) (int, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var (
		count   int
		revenue int64
	)
	for _, o := range r.s.orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		count++
		if o.Status == model.OrderCompleted {
			revenue += o.Total
		}
	}
	return count, revenue, nil
}

func (r *OrderRepo) SummaryForUser(_ context.Context, userID uint64) (int, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var (
		count int
		spent int64
	)
	for _, o := range r.s.orders {
		if o.UserID != userID {
			continue
		}
		count++
		if o.Status == model.OrderCompleted {
			spent += o.Total
		}
	}
	return count, spent, nil
}
