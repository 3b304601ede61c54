package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/handler"
	"github.com/iliyamo/fitzone/internal/middleware"
	"github.com/iliyamo/fitzone/internal/model"
)

// RegisterAdmin registers the back office under /api/admin. Callers need a
// session with the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, g Guards) {
	a := e.Group("/api/admin", g.Auth, middleware.RequireRole(model.RoleAdmin))

	a.GET("/dashboard-stats", h.DashboardStats)
	a.GET("/statistics", h.Statistics)

	a.GET("/users", h.Users)
	a.PUT("/users/:userId", h.UpdateUser)
	a.DELETE("/users/:userId", h.DeleteUser)

	a.GET("/orders", h.Orders)
	a.GET("/orders/:orderId", h.Order)
	a.GET("/memberships", h.Memberships)

	a.POST("/classes", h.CreateClass)
	a.PUT("/classes/:classId", h.UpdateClass)
	a.DELETE("/classes/:classId", h.DeactivateClass)
}
