package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/session"
)

// SessionAuth rejects requests without a valid session cookie with 401 and
// stores the session, user id and role in the context for the handlers.
func SessionAuth(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := m.Load(c.Request().Context(), c.Request())
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
			}
			c.Set(ctxSession, s)
			c.Set(ctxUserID, s.UserID)
			c.Set(ctxRole, s.Role)
			return next(c)
		}
	}
}
