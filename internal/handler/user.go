package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/middleware"
	"github.com/iliyamo/fitzone/internal/service"
)

// UserHandler serves the member dashboard: notifications and counters.
type UserHandler struct {
	Inbox   *service.NotificationService
	Reports *service.ReportService
}

func NewUserHandler(n *service.NotificationService, r *service.ReportService) *UserHandler {
	return &UserHandler{Inbox: n, Reports: r}
}

func (h *UserHandler) Notifications(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	list, unread, err := h.Inbox.Inbox(ctx, middleware.UserID(c))
	if err != nil {
		return fail(c, err, "could not load notifications")
	}
	return ok(c, echo.Map{"notifications": list, "unreadCount": unread})
}

func (h *UserHandler) MarkRead(c echo.Context) error {
	id, valid := paramID(c, "id")
	if !valid {
		return failMsg(c, service.ErrNotificationMissing.Msg)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Inbox.MarkRead(ctx, id, middleware.UserID(c)); err != nil {
		return fail(c, err, "could not update the notification")
	}
	return ok(c, nil)
}

func (h *UserHandler) Stats(c echo.Context) error {
	return h.stats(c, false)
}

// StatsImproved adds memberDays and isNewUser.
func (h *UserHandler) StatsImproved(c echo.Context) error {
	return h.stats(c, true)
}

func (h *UserHandler) stats(c echo.Context, extended bool) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	st, err := h.Reports.UserStats(ctx, middleware.UserID(c), extended)
	if err != nil {
		return fail(c, err, "could not load statistics")
	}
	return ok(c, echo.Map{"stats": st})
}
