package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/handler"
)

// RegisterClasses registers the class catalog (cached), the availability
// lookups and the member's bookings.
func RegisterClasses(e *echo.Echo, h *handler.ReservationHandler, g Guards) {
	e.GET("/api/classes", h.Classes, g.cached()...)
	e.GET("/api/classes/detailed", h.ClassesDetailed, g.cached()...)
	e.POST("/api/classes/check-availability", h.CheckAvailability)
	e.POST("/api/classes/available-dates", h.AvailableDates)

	api := e.Group("/api", g.Auth)
	api.GET("/my-reservations", h.Mine)
	api.POST("/reserve-class", h.Reserve)
	api.POST("/reserve-class/improved", h.ReserveImproved)
	api.DELETE("/cancel-reservation/:reservationId", h.Cancel)
}

// RegisterShop registers the cart, both checkout flavours and the order
// history. Every route needs a session.
func RegisterShop(e *echo.Echo, h *handler.ShopHandler, g Guards) {
	api := e.Group("/api", g.Auth)
	api.GET("/cart", h.Cart)
	api.POST("/cart/add", h.AddItem)
	api.POST("/cart/checkout", h.Checkout)
	api.POST("/checkout/complete", h.Complete)
	api.GET("/orders", h.Orders)
	api.GET("/orders/history", h.History)
}

// RegisterMembership registers the purchase, shared-code and status check
// flows (rate limited) and the member dashboard.
func RegisterMembership(e *echo.Echo, m *handler.MembershipHandler, u *handler.UserHandler, g Guards) {
	e.POST("/api/register-with-membership", m.RegisterWithMembership, g.limited()...)
	e.POST("/api/verify-membership-code", m.VerifyCode, g.limited()...)
	e.POST("/api/activate-with-code", m.ActivateWithCode, g.limited()...)
	e.POST("/api/check-membership-status", m.CheckStatus, g.limited()...)

	user := e.Group("/api/user", g.Auth)
	user.GET("/membership", m.Current)
	user.GET("/notifications", u.Notifications)
	user.PUT("/notifications/:id/read", u.MarkRead)
	user.GET("/stats", u.Stats)
	user.GET("/stats/improved", u.StatsImproved)
}
