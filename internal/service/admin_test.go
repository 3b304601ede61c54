package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/plan"
)

func TestAdminUserManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@fitzone.com")
	b := f.register(t, "b@fitzone.com")
	c := f.class(t, 10)
	_, err := f.booking.BookByDate(ctx, b.ID, BookInput{ClassID: c.ID, Date: monday, Time: "08:00 - 09:00"})
	require.NoError(t, err)

	_, err = f.admin.UpdateUser(ctx, a.ID, UserUpdate{Email: "B@fitzone.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	u, err := f.admin.UpdateUser(ctx, a.ID, UserUpdate{FullName: "Ana", Status: model.UserInactive})
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.FullName)
	assert.Equal(t, model.UserInactive, u.Status)

	assert.ErrorIs(t, f.admin.DeleteUser(ctx, a.ID, a.ID), ErrSelfDelete)
	require.NoError(t, f.admin.DeleteUser(ctx, a.ID, b.ID))
	assert.ErrorIs(t, f.admin.DeleteUser(ctx, a.ID, b.ID), ErrUserNotFound)

	n, err := f.mem.Reservations.CountAllActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	users, err := f.admin.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestAdminClassDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.admin.CreateClass(ctx, ClassInput{})
	assert.ErrorIs(t, err, ErrMissingFields)

	c, err := f.admin.CreateClass(ctx, ClassInput{Name: "Boxeo", Slots: []model.Slot{{Day: "Sábado", Time: "10:00 - 11:00", Period: "mañana"}}})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultClassCapacity, c.Capacity)
	assert.Equal(t, model.DefaultClassInstructor, c.Instructor)
	assert.Equal(t, model.DefaultClassDuration, c.Duration)
	assert.True(t, c.Active)

	c, err = f.admin.UpdateClass(ctx, c.ID, ClassInput{Name: "Boxeo Pro", Capacity: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, c.Capacity)

	require.NoError(t, f.admin.DeactivateClass(ctx, c.ID))
	list, err := f.booking.Classes(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = f.booking.AvailableDates(ctx, c.ID)
	assert.ErrorIs(t, err, ErrClassNotFound)
	assert.ErrorIs(t, f.admin.DeactivateClass(ctx, 999), ErrClassNotFound)
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.class(t, 10)
	buyer := f.buy(t, PurchaseInput{MembershipPlan: plan.MesLibre, Email: "buyer@fitzone.com"})
	_, err := f.booking.Book(ctx, buyer.User.ID, BookInput{ClassID: c.ID, Date: monday, Time: "08:00 - 09:00"})
	require.NoError(t, err)
	_, err = f.booking.Book(ctx, buyer.User.ID, BookInput{ClassID: c.ID, Date: "2030-03-06", Time: "19:00 - 20:00"})
	require.NoError(t, err)
	_, err = f.shop.AddItem(ctx, buyer.User.ID, AddItemInput{ProductID: "p", Name: "Bar", Price: 700})
	require.NoError(t, err)
	o, err := f.shop.Checkout(ctx, buyer.User.ID, plan.PayCash)
	require.NoError(t, err)

	dash, err := f.reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{TotalUsers: 1, ActiveReservations: 2, MonthlyOrders: 1, MonthlyRevenue: 700}, dash)

	stats, err := f.reports.Statistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats.TopClasses, 1)
	assert.Equal(t, model.ClassCount{ClassName: "Spinning", Count: 2}, stats.TopClasses[0])
	require.Len(t, stats.RegistrationsByMonth, 1)
	assert.Equal(t, 1, stats.RegistrationsByMonth[0].Count)

	f.advance(24 * time.Hour)
	us, err := f.reports.UserStats(ctx, buyer.User.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, us.ActiveReservations)
	assert.Equal(t, 1, us.CompletedTrainings)
	assert.Equal(t, 2, us.TotalReservations)
	assert.Equal(t, 1, us.TotalOrders)
	assert.Equal(t, int64(700), us.TotalSpent)
	require.NotNil(t, us.MemberDays)
	assert.Equal(t, 1, *us.MemberDays)
	assert.True(t, *us.IsNewUser)

	plain, err := f.reports.UserStats(ctx, buyer.User.ID, false)
	require.NoError(t, err)
	assert.Nil(t, plain.MemberDays)

	require.NoError(t, f.mem.Users.Delete(ctx, buyer.User.ID))
	ao, err := f.reports.Order(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deleted user", ao.UserInfo.FullName)
	_, err = f.reports.Order(ctx, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
