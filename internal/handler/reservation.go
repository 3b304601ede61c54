package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/middleware"
	"github.com/iliyamo/fitzone/internal/model"
	"github.com/iliyamo/fitzone/internal/service"
)

// ReservationHandler serves the class catalog and class bookings.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

func NewReservationHandler(r *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: r}
}

// Classes lists the active classes.
func (h *ReservationHandler) Classes(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.Reservations.Classes(ctx)
	if err != nil {
		return fail(c, err, "could not load classes")
	}
	return ok(c, echo.Map{"classes": list})
}

// ClassesDetailed is Classes with the slot count, used by the booking
// screen.
func (h *ReservationHandler) ClassesDetailed(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.Reservations.Classes(ctx)
	if err != nil {
		return fail(c, err, "could not load classes")
	}
	slots := 0
	for _, cl := range list {
		slots += len(cl.Slots)
	}
	return ok(c, echo.Map{"classes": list, "count": len(list), "slots": slots})
}

func (h *ReservationHandler) CheckAvailability(c echo.Context) error {
	var req service.BookInput
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	a, err := h.Reservations.CheckAvailability(ctx, req)
	if err != nil {
		return fail(c, err, "could not check availability")
	}
	return ok(c, echo.Map{"available": a.Available, "spotsLeft": a.SpotsLeft, "capacity": a.Capacity})
}

type availableDatesReq struct {
	ClassID uint64 `json:"classId"`
}

func (h *ReservationHandler) AvailableDates(c echo.Context) error {
	var req availableDatesReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	dates, err := h.Reservations.AvailableDates(ctx, req.ClassID)
	if err != nil {
		return fail(c, err, "could not load available dates")
	}
	return ok(c, echo.Map{"dates": dates})
}

// Mine lists the caller's reservations from today on.
func (h *ReservationHandler) Mine(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.Reservations.Mine(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, err, "could not load reservations")
	}
	return ok(c, echo.Map{"reservations": list})
}

// Reserve is the date-only booking kept for older clients.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	return h.reserve(c, h.Reservations.BookByDate)
}

// ReserveImproved books a class slot after the membership checks.
func (h *ReservationHandler) ReserveImproved(c echo.Context) error {
	return h.reserve(c, h.Reservations.Book)
}

func (h *ReservationHandler) reserve(c echo.Context, book func(ctx context.Context, userID uint64, in service.BookInput) (model.Reservation, error)) error {
	var req service.BookInput
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	res, err := book(ctx, middleware.UserID(c), req)
	if err != nil {
		return fail(c, err, "could not create the reservation")
	}
	return ok(c, echo.Map{"message": "reservation created", "reservation": res})
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, valid := paramID(c, "reservationId")
	if !valid {
		return failMsg(c, service.ErrReservationMissing.Msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Reservations.Cancel(ctx, id, middleware.UserID(c)); err != nil {
		return fail(c, err, "could not cancel the reservation")
	}
	return ok(c, echo.Map{"message": "reservation cancelled"})
}
