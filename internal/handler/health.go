package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/middleware"
)

// HealthHandler answers load balancer probes. Ping, when set, checks the
// database.
type HealthHandler struct {
	Ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{Ping: ping}
}

func (h *HealthHandler) Health(c echo.Context) error {
	if h.Ping != nil {
		ctx, cancel := requestCtx(c)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			c.Logger().Errorf("health: %v", err)
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"success": false, "status": "db unavailable"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": "ok"})
}

// CSRFToken hands the browser the token it must echo in X-CSRF-Token on
// form posts.
func CSRFToken(c echo.Context) error {
	return ok(c, echo.Map{"csrfToken": middleware.CSRFToken(c)})
}
