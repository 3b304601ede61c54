// Package memory provides in-process implementations of the stores used by
// the services. All stores created by one New call share a single mutex so
// cross-table operations (booking, checkout, shared activation, user delete)
// are as atomic as their MySQL transactions.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

type state struct {
	mu sync.Mutex

	seq uint64

	users         map[uint64]model.User
	classes       map[uint64]model.Class
	reservations  map[uint64]model.Reservation
	carts         map[uint64]*model.Cart // keyed by user id
	orders        map[uint64]model.Order
	memberships   map[uint64]model.Membership
	pending       map[string]model.PendingUser // keyed by membership code
	notifications map[uint64]model.Notification
}

func (s *state) nextID() uint64 {
	s.seq++
	return s.seq
}

// Store groups the in-memory stores sharing one state.
type Store struct {
	Users         *UserRepo
	Classes       *ClassRepo
	Reservations  *ReservationRepo
	Carts         *CartRepo
	Orders        *OrderRepo
	Memberships   *MembershipRepo
	Notifications *NotificationRepo
}

// New returns an empty store.
func New() *Store {
	s := &state{
		users:         map[uint64]model.User{},
		classes:       map[uint64]model.Class{},
		reservations:  map[uint64]model.Reservation{},
		carts:         map[uint64]*model.Cart{},
		orders:        map[uint64]model.Order{},
		memberships:   map[uint64]model.Membership{},
		pending:       map[string]model.PendingUser{},
		notifications: map[uint64]model.Notification{},
	}
	return &Store{
		Users:         &UserRepo{s: s},
		Classes:       &ClassRepo{s: s},
		Reservations:  &ReservationRepo{s: s},
		Carts:         &CartRepo{s: s},
		Orders:        &OrderRepo{s: s},
		Memberships:   &MembershipRepo{s: s},
		Notifications: &NotificationRepo{s: s},
	}
}

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func sortedKeys[V any](m map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func now() time.Time { return time.Now().UTC() }

// emailTaken must be called with the lock held.
func (s *state) emailTaken(email string, except uint64) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

// insertUser must be called with the lock held.
func (s *state) insertUser(u *model.User) error {
	u.Email = normEmail(u.Email)
	if s.emailTaken(u.Email, 0) {
		return repository.ErrEmailExists
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if u.Status == "" {
		u.Status = model.UserActive
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	u.ID = s.nextID()
	s.users[u.ID] = *u
	return nil
}

// insertMembership must be called with the lock held.
func (s *state) insertMembership(m *model.Membership) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	m.ID = s.nextID()
	s.memberships[m.ID] = cloneMembership(*m)
}

func cloneMembership(m model.Membership) model.Membership {
	if m.TrainingDays != nil {
		m.TrainingDays = append([]string(nil), m.TrainingDays...)
	}
	if m.Verification != nil {
		v := *m.Verification
		m.Verification = &v
	}
	if m.Shared.SecondUserID != nil {
		id := *m.Shared.SecondUserID
		m.Shared.SecondUserID = &id
	}
	return m
}

func cloneClass(c model.Class) model.Class {
	c.Slots = append([]model.Slot(nil), c.Slots...)
	return c
}

func cloneCart(c *model.Cart) model.Cart {
	out := *c
	out.Items = append([]model.CartItem{}, c.Items...)
	return out
}
