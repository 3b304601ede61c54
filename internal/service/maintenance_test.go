package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/plan"
	"github.com/iliyamo/fitzone/internal/repository"
)

func TestSweepRemindsExpiringOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	week := f.buy(t, PurchaseInput{MembershipPlan: plan.Semanal, Email: "w@fitzone.com"})
	month := f.buy(t, PurchaseInput{MembershipPlan: plan.MesLibre, Email: "m@fitzone.com"})

	rep := f.sweep.Sweep(ctx)
	assert.Empty(t, rep.Errors)
	assert.Equal(t, 1, rep.Reminded)

	rep = f.sweep.Sweep(ctx)
	assert.Equal(t, 0, rep.Reminded)

	items, _, err := f.notify.Inbox(ctx, week.User.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, model.NotifyMembershipExpiring, items[0].Type)
	items, _, err = f.notify.Inbox(ctx, month.User.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSweepExpiresAndPrunes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.class(t, 10)
	day := f.buy(t, PurchaseInput{MembershipPlan: plan.DiaClase, Email: "d@fitzone.com"})
	_, err := f.booking.Book(ctx, day.User.ID, BookInput{ClassID: c.ID, Date: monday, Time: "08:00 - 09:00"})
	require.NoError(t, err)
	f.buy(t, sharedInput())

	// Past the shared plan's month, not just on it.
	f.advance(model.PendingUserTTL + 48*time.Hour)
	rep := f.sweep.Sweep(ctx)
	assert.Empty(t, rep.Errors)
	assert.Equal(t, 2, rep.Expired)
	assert.Equal(t, int64(1), rep.PrunedBookings)
	assert.Equal(t, int64(1), rep.PrunedPending)

	items, unread, err := f.notify.Inbox(ctx, day.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)
	assert.Equal(t, model.NotifyMembershipExpired, items[0].Type)

	rep = f.sweep.Sweep(ctx)
	assert.Equal(t, 0, rep.Expired)
	_, unread, err = f.notify.Inbox(ctx, day.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)
}

func TestSweepKeepsMembershipEndingNow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	month := f.buy(t, PurchaseInput{MembershipPlan: plan.MesLibre, Email: "m@fitzone.com"})

	*f.clock = month.Membership.EndDate
	rep := f.sweep.Sweep(ctx)
	assert.Empty(t, rep.Errors)
	assert.Equal(t, 0, rep.Expired)
	_, err := f.mem.Memberships.LatestActive(ctx, month.User.ID)
	require.NoError(t, err)

	// The login check treats zero days left as over and flips it.
	st, err := f.members.CheckStatus(ctx, month.User.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, st.Status)
	assert.Equal(t, 0, st.DaysExpired)
	_, err = f.mem.Memberships.LatestActive(ctx, month.User.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkReadOnlyOwnNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@fitzone.com")
	b := f.register(t, "b@fitzone.com")
	n, err := f.notify.Notify(ctx, a.ID, model.NotifyGeneral, "Hi", "Hello", false)
	require.NoError(t, err)

	assert.ErrorIs(t, f.notify.MarkRead(ctx, n.ID, b.ID), ErrNotificationMissing)
	require.NoError(t, f.notify.MarkRead(ctx, n.ID, a.ID))
	_, unread, err := f.notify.Inbox(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)
}
