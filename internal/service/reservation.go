package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/plan"
	"github.com/iliyamo/fitzone/internal/queue"
	"github.com/iliyamo/fitzone/internal/repository"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Available-dates window.
const (
	availabilityHorizonDays = 60
	availabilityMaxSlots    = 30
)

// Spanish display names indexed by time.Weekday and time.Month.
var (
	displayWeekdays = [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}
	displayMonths   = [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// DisplayDate renders a date the way the schedule shows it, for example
// "miércoles, 14 de octubre de 2026".
func DisplayDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d",
		strings.ToLower(displayWeekdays[t.Weekday()]), t.Day(), displayMonths[t.Month()-1], t.Year())
}

// weekdayOf maps a slot's display day ("Miércoles", "miercoles") to a
// time.Weekday.
func weekdayOf(day string) (time.Weekday, bool) {
	d := strings.ToLower(strings.TrimSpace(day))
	for i, name := range displayWeekdays {
		if d == strings.ToLower(name) || d == plan.Weekdays[i] {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// ParseDate reads a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, invalidf("invalid date %q", s)
	}
	return t, nil
}

// ReservationService books and lists class reservations.
type ReservationService struct {
	classes       ClassStore
	reservations  ReservationStore
	memberships   MembershipStore
	notifications *NotificationService
	fx            sideEffects
	now           Clock
}

func NewReservationService(d Deps, notifications *NotificationService) *ReservationService {
	return &ReservationService{
		classes:       d.Stores.Classes,
		reservations:  d.Stores.Reservations,
		memberships:   d.Stores.Memberships,
		notifications: notifications,
		fx:            d.effects(),
		now:           clockOr(d.Clock),
	}
}

// Classes lists the active schedule.
func (s *ReservationService) Classes(ctx context.Context) ([]model.Class, error) {
	list, err := s.classes.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return list, nil
}

// activeClass loads a class that is still on the schedule.
func (s *ReservationService) activeClass(ctx context.Context, id uint64) (model.Class, error) {
	c, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Class{}, ErrClassNotFound
		}
		return model.Class{}, fmt.Errorf("get class: %w", err)
	}
	if !c.Active {
		return model.Class{}, ErrClassNotFound
	}
	return c, nil
}

// BookInput is the reserve-class payload.
type BookInput struct {
	ClassID uint64 `json:"classId"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

func (s *ReservationService) book(ctx context.Context, userID uint64, in BookInput, date time.Time, scope repository.BookingScope) (model.Reservation, error) {
	res := model.Reservation{
		UserID:    userID,
		ClassID:   in.ClassID,
		Date:      date,
		Time:      strings.TrimSpace(in.Time),
		CreatedAt: s.now(),
	}
	if err := s.reservations.Book(ctx, &res, scope); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return model.Reservation{}, ErrClassNotFound
		case errors.Is(err, repository.ErrAlreadyReserved):
			return model.Reservation{}, ErrAlreadyReserved
		case errors.Is(err, repository.ErrClassFull):
			return model.Reservation{}, ErrClassFull
		}
		return model.Reservation{}, fmt.Errorf("book class: %w", err)
	}
	return res, nil
}

// BookByDate is the original booking rule: one booking per user, class and
// day, with capacity counted per day.
func (s *ReservationService) BookByDate(ctx context.Context, userID uint64, in BookInput) (model.Reservation, error) {
	date, err := ParseDate(in.Date)
	if err != nil {
		return model.Reservation{}, err
	}
	res, err := s.book(ctx, userID, in, date, repository.ScopeDate)
	if err != nil {
		return model.Reservation{}, err
	}
	s.confirmed(res)
	return res, nil
}

// Book is the canonical booking rule. Duplicates and capacity are counted
// per class, day and time, and the caller needs an active membership
// covering the date. Three-day members may only book their training days.
func (s *ReservationService) Book(ctx context.Context, userID uint64, in BookInput) (model.Reservation, error) {
	date, err := ParseDate(in.Date)
	if err != nil {
		return model.Reservation{}, err
	}
	if _, err := s.activeClass(ctx, in.ClassID); err != nil {
		return model.Reservation{}, err
	}
	m, err := s.memberships.LatestActive(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, ErrMembershipRequired
		}
		return model.Reservation{}, fmt.Errorf("latest membership: %w", err)
	}
	if date.Before(repository.Day(s.now())) {
		return model.Reservation{}, ErrPastDate
	}
	if date.After(m.EndDate) {
		return model.Reservation{}, ErrBeyondMembership
	}
	if m.PlanType == plan.TresVeces && !containsDay(m.TrainingDays, plan.WeekdayName(date)) {
		return model.Reservation{}, ErrNotTrainingDay
	}

	res, err := s.book(ctx, userID, in, date, repository.ScopeSlot)
	if err != nil {
		return model.Reservation{}, err
	}
	msg := fmt.Sprintf("Your booking for %s on %s at %s is confirmed.", res.ClassName, date.Format("02/01/2006"), res.Time)
	if _, err := s.notifications.Notify(ctx, userID, model.NotifyGeneral, "Reservation confirmed", msg, false); err != nil {
		s.fx.warnf("reservation %d: %v", res.ID, err)
	}
	s.confirmed(res)
	return res, nil
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func (s *ReservationService) confirmed(res model.Reservation) {
	s.fx.publish(queue.QueueReservationConfirmed, queue.ReservationConfirmed{
		ReservationID: res.ID,
		UserID:        res.UserID,
		ClassID:       res.ClassID,
		ClassName:     res.ClassName,
		Date:          res.Date.Format(DateLayout),
		Time:          res.Time,
	})
}

// Cancel flips the caller's active reservation to cancelled.
func (s *ReservationService) Cancel(ctx context.Context, id, userID uint64) error {
	if err := s.reservations.Cancel(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationMissing
		}
		return fmt.Errorf("cancel reservation: %w", err)
	}
	return nil
}

// Mine lists the caller's active reservations from today on.
func (s *ReservationService) Mine(ctx context.Context, userID uint64) ([]model.ReservationWithClass, error) {
	list, err := s.reservations.ListUpcoming(ctx, userID, repository.Day(s.now()))
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return list, nil
}

// Availability is the remaining room of one class occurrence.
type Availability struct {
	Available bool `json:"available"`
	SpotsLeft int  `json:"spotsLeft"`
	Capacity  int  `json:"capacity"`
}

// CheckAvailability counts active bookings for a class, day and time.
func (s *ReservationService) CheckAvailability(ctx context.Context, in BookInput) (Availability, error) {
	date, err := ParseDate(in.Date)
	if err != nil {
		return Availability{}, err
	}
	c, err := s.activeClass(ctx, in.ClassID)
	if err != nil {
		return Availability{}, err
	}
	n, err := s.reservations.CountActive(ctx, c.ID, date, strings.TrimSpace(in.Time))
	if err != nil {
		return Availability{}, fmt.Errorf("count reservations: %w", err)
	}
	left := c.Capacity - n
	if left < 0 {
		left = 0
	}
	return Availability{Available: n < c.Capacity, SpotsLeft: left, Capacity: c.Capacity}, nil
}

// DateOption is one bookable occurrence offered to the member.
type DateOption struct {
	Date        string `json:"date"`
	DisplayDate string `json:"displayDate"`
	Time        string `json:"time"`
	Period      string `json:"period"`
}

// AvailableDates lists the class's occurrences over the next 60 days,
// starting today, capped at 30.
func (s *ReservationService) AvailableDates(ctx context.Context, classID uint64) ([]DateOption, error) {
	c, err := s.activeClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	byDay := make(map[time.Weekday][]model.Slot)
	for _, sl := range c.Slots {
		if wd, ok := weekdayOf(sl.Day); ok {
			byDay[wd] = append(byDay[wd], sl)
		}
	}
	out := make([]DateOption, 0, availabilityMaxSlots)
	start := repository.Day(s.now())
	for i := 0; i < availabilityHorizonDays && len(out) < availabilityMaxSlots; i++ {
		day := start.AddDate(0, 0, i)
		for _, sl := range byDay[day.Weekday()] {
			if len(out) == availabilityMaxSlots {
				break
			}
			out = append(out, DateOption{
				Date:        day.Format(DateLayout),
				DisplayDate: DisplayDate(day),
				Time:        sl.Time,
				Period:      sl.Period,
			})
		}
	}
	return out, nil
}
