package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/repository"
)

const (
	topClassesLimit     = 5
	registrationsMonths = 6
	newUserDays         = 7
)

// ReportService builds the dashboard figures for admins and members.
type ReportService struct {
	stores Stores
	now    Clock
}

func NewReportService(d Deps) *ReportService {
	return &ReportService{stores: d.Stores, now: clockOr(d.Clock)}
}

// DashboardStats are the admin landing page counters.
type DashboardStats struct {
	TotalUsers         int   `json:"totalUsers"`
	ActiveReservations int   `json:"activeReservations"`
	MonthlyOrders      int   `json:"monthlyOrders"`
	MonthlyRevenue     int64 `json:"monthlyRevenue"`
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := repository.Day(t).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// Dashboard counts regular users, active reservations and this month's
// orders. Revenue only sums completed orders.
func (s *ReportService) Dashboard(ctx context.Context) (DashboardStats, error) {
	var st DashboardStats
	var err error
	if st.TotalUsers, err = s.stores.Users.CountByRole(ctx, model.RoleUser); err != nil {
		return st, fmt.Errorf("count users: %w", err)
	}
	if st.ActiveReservations, err = s.stores.Reservations.CountAllActive(ctx); err != nil {
		return st, fmt.Errorf("count reservations: %w", err)
	}
	if st.MonthlyOrders, st.MonthlyRevenue, err = s.stores.Orders.SummarySince(ctx, startOfMonth(s.now())); err != nil {
		return st, fmt.Errorf("order summary: %w", err)
	}
	return st, nil
}

// Statistics is the admin charts payload.
type Statistics struct {
	TopClasses           []model.ClassCount `json:"topClasses"`
	RegistrationsByMonth []model.MonthCount `json:"registrationsByMonth"`
}

// Statistics returns the most booked classes and the sign-ups of the last
// six months.
func (s *ReportService) Statistics(ctx context.Context) (Statistics, error) {
	top, err := s.stores.Reservations.TopClasses(ctx, topClassesLimit)
	if err != nil {
		return Statistics{}, fmt.Errorf("top classes: %w", err)
	}
	regs, err := s.stores.Users.RegistrationsByMonth(ctx, s.now().AddDate(0, -registrationsMonths, 0))
	if err != nil {
		return Statistics{}, fmt.Errorf("registrations: %w", err)
	}
	if top == nil {
		top = []model.ClassCount{}
	}
	if regs == nil {
		regs = []model.MonthCount{}
	}
	return Statistics{TopClasses: top, RegistrationsByMonth: regs}, nil
}

// UserInfo identifies an order's buyer on the admin screens.
type UserInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

var deletedUser = UserInfo{FullName: "Deleted user", Email: "N/A"}

// AdminOrder is an order with its buyer.
type AdminOrder struct {
	model.Order
	UserInfo UserInfo `json:"userInfo"`
}

func (s *ReportService) withUser(ctx context.Context, o model.Order, cache map[uint64]UserInfo) AdminOrder {
	info, ok := cache[o.UserID]
	if !ok {
		info = deletedUser
		if u, err := s.stores.Users.GetByID(ctx, o.UserID); err == nil {
			info = UserInfo{FullName: u.FullName, Email: u.Email}
		}
		cache[o.UserID] = info
	}
	return AdminOrder{Order: o, UserInfo: info}
}

// Orders lists every order, newest first, with buyer details.
func (s *ReportService) Orders(ctx context.Context) ([]AdminOrder, error) {
	list, err := s.stores.Orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	cache := make(map[uint64]UserInfo)
	out := make([]AdminOrder, 0, len(list))
	for _, o := range list {
		out = append(out, s.withUser(ctx, o, cache))
	}
	return out, nil
}

// Order returns one order with buyer details.
func (s *ReportService) Order(ctx context.Context, id uint64) (AdminOrder, error) {
	o, err := s.stores.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AdminOrder{}, ErrOrderNotFound
		}
		return AdminOrder{}, fmt.Errorf("get order: %w", err)
	}
	return s.withUser(ctx, o, map[uint64]UserInfo{}), nil
}

// UserStats are the member dashboard counters. MemberDays and IsNewUser are
// only filled by the extended variant.
type UserStats struct {
	ActiveReservations int       `json:"activeReservations"`
	CompletedTrainings int       `json:"completedTrainings"`
	TotalReservations  int       `json:"totalReservations"`
	TotalOrders        int       `json:"totalOrders"`
	TotalSpent         int64     `json:"totalSpent"`
	MemberSince        time.Time `json:"memberSince"`
	MemberDays         *int      `json:"memberDays,omitempty"`
	IsNewUser          *bool     `json:"isNewUser,omitempty"`
}

// UserStats computes the member dashboard counters. With extended set it
// also reports how many days the user has been a member.
func (s *ReportService) UserStats(ctx context.Context, userID uint64, extended bool) (UserStats, error) {
	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UserStats{}, ErrUserNotFound
		}
		return UserStats{}, fmt.Errorf("get user: %w", err)
	}
	now := s.now()
	today := repository.Day(now)
	rc, err := s.stores.Reservations.CountsForUser(ctx, userID, today)
	if err != nil {
		return UserStats{}, fmt.Errorf("reservation counts: %w", err)
	}
	orders, spent, err := s.stores.Orders.SummaryForUser(ctx, userID)
	if err != nil {
		return UserStats{}, fmt.Errorf("order summary: %w", err)
	}
	st := UserStats{
		ActiveReservations: rc.Upcoming,
		CompletedTrainings: rc.Completed,
		TotalReservations:  rc.Total,
		TotalOrders:        orders,
		TotalSpent:         spent,
		MemberSince:        u.CreatedAt,
	}
	if extended {
		st.TotalReservations = rc.Upcoming + rc.Completed
		days := int(math.Ceil(math.Abs(float64(today.Sub(u.CreatedAt))) / float64(24*time.Hour)))
		isNew := days < newUserDays
		st.MemberDays, st.IsNewUser = &days, &isNew
	}
	return st, nil
}
