package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/session"
)

// Context keys set by SessionAuth.
const (
	ctxUserID  = "user_id"
	ctxRole    = "role"
	ctxSession = "session"
)

// UserID returns the authenticated user's id, or 0 for anonymous requests.
func UserID(c echo.Context) uint64 {
	id, _ := c.Get(ctxUserID).(uint64)
	return id
}

// CurrentSession returns the session loaded by SessionAuth.
func CurrentSession(c echo.Context) (session.Session, bool) {
	s, ok := c.Get(ctxSession).(session.Session)
	return s, ok
}

// currentUserID is the rate limit key part for the caller.
func currentUserID(c echo.Context) string {
	if id := UserID(c); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
