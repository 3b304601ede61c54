// Package router maps the HTTP API onto the handlers and decides which
// middleware guards every route.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/handler"
)

// Guards are the route-level middlewares. Auth is required; RateLimit and
// Cache may be nil, in which case routes are registered without them.
type Guards struct {
	Auth      echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

func (g Guards) limited() []echo.MiddlewareFunc {
	if g.RateLimit == nil {
		return nil
	}
	return []echo.MiddlewareFunc{g.RateLimit}
}

func (g Guards) cached() []echo.MiddlewareFunc {
	if g.Cache == nil {
		return nil
	}
	return []echo.MiddlewareFunc{g.Cache}
}

// RegisterRoutes registers the unauthenticated utility endpoints.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
	e.GET("/api/csrf-token", handler.CSRFToken)
}

// RegisterAuth registers registration, login and logout (rate limited) and
// the session user endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	e.POST("/api/register", a.Register, g.limited()...)
	e.POST("/api/login", a.Login, g.limited()...)
	e.POST("/api/logout", a.Logout, g.limited()...)

	e.GET("/api/user", a.Me, g.Auth)
}
