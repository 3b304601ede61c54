package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitzone/internal/middleware"
	"github.com/iliyamo/fitzone/internal/service"
	"github.com/iliyamo/fitzone/internal/session"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	Auth     *service.AuthService
	Sessions *session.Manager
}

func NewAuthHandler(a *service.AuthService, m *session.Manager) *AuthHandler {
	return &AuthHandler{Auth: a, Sessions: m}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a plain account without membership.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if _, err := h.Auth.Register(ctx, req); err != nil {
		return fail(c, err, "registration failed")
	}
	return ok(c, echo.Map{"message": "user registered successfully"})
}

// Login verifies the credentials and opens a session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, invalidBody)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, err, "login failed")
	}
	if _, err := h.Sessions.Issue(ctx, c.Response(), session.Session{
		UserID:   u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
	}); err != nil {
		return fail(c, err, "login failed")
	}
	return ok(c, echo.Map{
		"message":     "login successful",
		"redirectUrl": service.RedirectFor(u),
		"userId":      u.ID,
		"user":        echo.Map{"role": u.Role, "fullName": u.FullName},
	})
}

// Logout drops the session. It succeeds even without one.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Sessions.Destroy(ctx, c.Response(), c.Request()); err != nil {
		return fail(c, err, "logout failed")
	}
	return ok(c, echo.Map{"message": "logged out"})
}

// Me returns the logged-in user as stored in the session.
func (h *AuthHandler) Me(c echo.Context) error {
	s, found := middleware.CurrentSession(c)
	if !found {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}
	return ok(c, echo.Map{"user": echo.Map{
		"id":       s.UserID,
		"fullName": s.FullName,
		"email":    s.Email,
		"phone":    s.Phone,
		"role":     s.Role,
	}})
}
