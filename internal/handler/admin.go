package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/middleware"
	"github.com/iliyamo/fitzone/internal/service"
)

// AdminHandler serves the back office. Routes are mounted behind
// SessionAuth and RequireRole("admin").
type AdminHandler struct {
	Admin   *service.AdminService
	Reports *service.ReportService
	// InvalidateClasses drops cached class listings after a class write.
	// It may be nil.
	InvalidateClasses func(ctx context.Context) error
}

func NewAdminHandler(a *service.AdminService, r *service.ReportService, invalidate func(ctx context.Context) error) *AdminHandler {
	return &AdminHandler{Admin: a, Reports: r, InvalidateClasses: invalidate}
}

func (h *AdminHandler) DashboardStats(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	st, err := h.Reports.Dashboard(ctx)
	if err != nil {
		return fail(c, err, "could not load statistics")
	}
	return ok(c, echo.Map{"stats": st})
}

func (h *AdminHandler) Statistics(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	st, err := h.Reports.Statistics(ctx)
	if err != nil {
		return fail(c, err, "could not load statistics")
	}
	return ok(c, echo.Map{"topClasses": st.TopClasses, "registrationsByMonth": st.RegistrationsByMonth})
}

func (h *AdminHandler) Users(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.Admin.Users(ctx)
	if err != nil {
		return fail(c, err, "could not load users")
	}
	return ok(c, echo.Map{"users": list})
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, valid := paramID(c, "userId")
	if !valid {
		return failMsg(c, service.ErrUserNotFound.Msg)
	}
	var req service.UserUpdate
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Admin.UpdateUser(ctx, id, req)
	if err != nil {
		return fail(c, err, "could not update the user")
	}
	return ok(c, echo.Map{"message": "user updated", "user": u})
}

// DeleteUser removes a user with their reservations and cart.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, valid := paramID(c, "userId")
	if !valid {
		return failMsg(c, service.ErrUserNotFound.Msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Admin.DeleteUser(ctx, middleware.UserID(c), id); err != nil {
		return fail(c, err, "could not delete the user")
	}
	return ok(c, echo.Map{"message": "user deleted"})
}

func (h *AdminHandler) Orders(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.Reports.Orders(ctx)
	if err != nil {
		return fail(c, err, "could not load orders")
	}
	return ok(c, echo.Map{"orders": list})
}

func (h *AdminHandler) Order(c echo.Context) error {
	id, valid := paramID(c, "orderId")
	if !valid {
		return failMsg(c, service.ErrOrderNotFound.Msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	o, err := h.Reports.Order(ctx, id)
	if err != nil {
		return fail(c, err, "could not load the order")
	}
	return ok(c, echo.Map{"order": o})
}

func (h *AdminHandler) Memberships(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, err := h.Admin.Memberships(ctx)
	if err != nil {
		return fail(c, err, "could not load memberships")
	}
	return ok(c, echo.Map{"memberships": list})
}

func (h *AdminHandler) CreateClass(c echo.Context) error {
	var req service.ClassInput
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	cl, err := h.Admin.CreateClass(ctx, req)
	if err != nil {
		return fail(c, err, "could not create the class")
	}
	h.classesChanged(ctx, c)
	return ok(c, echo.Map{"message": "class created", "class": cl})
}

func (h *AdminHandler) UpdateClass(c echo.Context) error {
	id, valid := paramID(c, "classId")
	if !valid {
		return failMsg(c, service.ErrClassNotFound.Msg)
	}
	var req service.ClassInput
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	cl, err := h.Admin.UpdateClass(ctx, id, req)
	if err != nil {
		return fail(c, err, "could not update the class")
	}
	h.classesChanged(ctx, c)
	return ok(c, echo.Map{"message": "class updated", "class": cl})
}

// DeactivateClass hides a class from the catalog; existing bookings stay.
func (h *AdminHandler) DeactivateClass(c echo.Context) error {
	id, valid := paramID(c, "classId")
	if !valid {
		return failMsg(c, service.ErrClassNotFound.Msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Admin.DeactivateClass(ctx, id); err != nil {
		return fail(c, err, "could not deactivate the class")
	}
	h.classesChanged(ctx, c)
	return ok(c, echo.Map{"message": "class deactivated"})
}

func (h *AdminHandler) classesChanged(ctx context.Context, c echo.Context) {
	if h.InvalidateClasses == nil {
		return
	}
	if err := h.InvalidateClasses(ctx); err != nil {
		c.Logger().Warnf("class cache not invalidated: %v", err)
	}
}
