// Package service implements the gym's business rules on top of the store
// interfaces declared here. Both the MySQL repositories and the in-memory
// stores satisfy them.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	ListByRole(ctx context.Context, role string) ([]model.User, error)
	Update(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id uint64) error
	CountByRole(ctx context.Context, role string) (int, error)
	RegistrationsByMonth(ctx context.Context, since time.Time) ([]model.MonthCount, error)
}

type ClassStore interface {
	List(ctx context.Context, activeOnly bool) ([]model.Class, error)
	GetByID(ctx context.Context, id uint64) (model.Class, error)
	Create(ctx context.Context, c *model.Class) error
	Update(ctx context.Context, c model.Class) error
	Deactivate(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int, error)
}

type ReservationStore interface {
	Book(ctx context.Context, res *model.Reservation, scope repository.BookingScope) error
	CountActive(ctx context.Context, classID uint64, date time.Time, slot string) (int, error)
	ListUpcoming(ctx context.Context, userID uint64, from time.Time) ([]model.ReservationWithClass, error)
	Cancel(ctx context.Context, id, userID uint64) error
	DeleteBefore(ctx context.Context, day time.Time) (int64, error)
	CountsForUser(ctx context.Context, userID uint64, today time.Time) (model.ReservationCounts, error)
	CountAllActive(ctx context.Context) (int, error)
	TopClasses(ctx context.Context, limit int) ([]model.ClassCount, error)
}

type CartStore interface {
	Get(ctx context.Context, userID uint64) (model.Cart, error)
	AddItem(ctx context.Context, userID uint64, item model.CartItem) (model.Cart, error)
}

type OrderStore interface {
	PlaceFromCart(ctx context.Context, userID uint64, price repository.PriceFunc) (model.Order, error)
	ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	GetByID(ctx context.Context, id uint64) (model.Order, error)
	SummarySince(ctx context.Context, since time.Time) (int, int64, error)
	SummaryForUser(ctx context.Context, userID uint64) (int, int64, error)
}

type MembershipStore interface {
	CreateWithUser(ctx context.Context, u *model.User, m *model.Membership, pending *model.PendingUser) error
	FindShareable(ctx context.Context, code string, now time.Time) (model.Membership, model.PendingUser, error)
	ActivateShared(ctx context.Context, code string, now time.Time, second *model.User) (model.Membership, error)
	LatestActive(ctx context.Context, userID uint64) (model.Membership, error)
	SetStatus(ctx context.Context, id uint64, status string) error
	MarkRenewalNotified(ctx context.Context, id uint64) error
	ListExpiring(ctx context.Context, from, until time.Time) ([]model.Membership, error)
	ExpireOverdue(ctx context.Context, now time.Time) ([]model.Membership, error)
	DeleteExpiredPending(ctx context.Context, now time.Time) (int64, error)
	ListAll(ctx context.Context) ([]model.Membership, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListRecent(ctx context.Context, userID uint64, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uint64) (int, error)
	HasUnread(ctx context.Context, userID uint64, typ string) (bool, error)
	MarkRead(ctx context.Context, id, userID uint64) error
}

// Stores bundles every store a service may need.
type Stores struct {
	Users         UserStore
	Classes       ClassStore
	Reservations  ReservationStore
	Carts         CartStore
	Orders        OrderStore
	Memberships   MembershipStore
	Notifications NotificationStore
}

// Clock returns the current time. Tests replace it to pin "now".
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func clockOr(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}
