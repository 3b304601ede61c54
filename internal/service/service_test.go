package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/fitzone/internal/mailer"
	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/plan"
	"github.com/iliyamo/fitzone/internal/repository/memory"
)

// Monday.
var testNow = time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC)

type recordedEvent struct {
	Queue   string
	Payload any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
	mails  []mailer.Message
}

func (r *recorder) Publish(_ context.Context, q string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Queue: q, Payload: payload})
	return nil
}

func (r *recorder) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mails = append(r.mails, msg)
	return nil
}

func (r *recorder) queues() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Queue)
	}
	return out
}

type fixture struct {
	deps  Deps
	mem   *memory.Store
	rec   *recorder
	clock *time.Time

	notify  *NotificationService
	auth    *AuthService
	members *MembershipService
	booking *ReservationService
	shop    *ShopService
	reports *ReportService
	admin   *AdminService
	sweep   *MaintenanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.New()
	rec := &recorder{}
	now := testNow
	f := &fixture{mem: mem, rec: rec, clock: &now}
	f.deps = Deps{
		Stores: Stores{
			Users:         mem.Users,
			Classes:       mem.Classes,
			Reservations:  mem.Reservations,
			Carts:         mem.Carts,
			Orders:        mem.Orders,
			Memberships:   mem.Memberships,
			Notifications: mem.Notifications,
		},
		Events: rec,
		Mail:   rec,
		Logger: log.New("test"),
		Clock:  func() time.Time { return *f.clock },
		Inline: true,
	}
	f.notify = NewNotificationService(f.deps)
	f.auth = NewAuthService(f.deps, bcrypt.MinCost)
	f.members = NewMembershipService(f.deps, plan.DefaultCatalog(), f.notify, bcrypt.MinCost)
	f.booking = NewReservationService(f.deps, f.notify)
	f.shop = NewShopService(f.deps)
	f.reports = NewReportService(f.deps)
	f.admin = NewAdminService(f.deps)
	f.sweep = NewMaintenanceService(f.deps, f.notify)
	return f
}

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func (f *fixture) register(t *testing.T, email string) model.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{FullName: "Member " + email, Email: email, Password: "secret"})
	require.NoError(t, err)
	return u
}

func (f *fixture) buy(t *testing.T, in PurchaseInput) PurchaseResult {
	t.Helper()
	if in.Password == "" {
		in.Password = "secret"
	}
	if in.FullName == "" {
		in.FullName = "Member"
	}
	res, err := f.members.Purchase(context.Background(), in)
	require.NoError(t, err)
	return res
}

func (f *fixture) class(t *testing.T, capacity int) model.Class {
	t.Helper()
	c := model.Class{
		Name:     "Spinning",
		Capacity: capacity,
		Active:   true,
		Slots: []model.Slot{
			{Day: "Lunes", Time: "08:00 - 09:00", Period: "mañana"},
			{Day: "Miércoles", Time: "19:00 - 20:00", Period: "noche"},
		},
	}
	require.NoError(t, f.mem.Classes.Create(context.Background(), &c))
	return c
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	msg, ok := Message(err)
	require.True(t, ok, "expected a business error, got %v", err)
	return msg
}
