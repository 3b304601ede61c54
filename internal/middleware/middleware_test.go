package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitzone/internal/config"
	"github.com/iliyamo/fitzone/internal/session"
)

func newManager() *session.Manager {
	return session.NewManager(session.NewMemoryStore(), "test-secret", time.Hour, "", false)
}

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": UserID(c)})
}

func TestSessionAuthRejectsMissingCookie(t *testing.T) {
	e := echo.New()
	e.GET("/p", ok, SessionAuth(newManager()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"unauthorized"}`, rec.Body.String())
}

func TestSessionAuthAndRole(t *testing.T) {
	m := newManager()
	e := echo.New()
	e.GET("/me", ok, SessionAuth(m))
	e.GET("/admin", ok, SessionAuth(m), RequireRole("admin"))

	issue := httptest.NewRecorder()
	_, err := m.Issue(httptest.NewRequest(http.MethodGet, "/", nil).Context(), issue, session.Session{UserID: 7, Role: "user"})
	require.NoError(t, err)
	cookie := issue.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"user":7}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRedisMiddlewaresAreNoopsWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/c", ok,
		NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil),
		NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/c", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/login")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:route:POST /api/login", buildRateKey(cfg, c))
	c.Set(ctxUserID, uint64(5))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:5", buildRateKey(cfg, c))
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"success":true}`))
	require.NoError(t, err)
	status, got, body, okd := decodePayload(bs)
	require.True(t, okd)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"success":true}`, string(body))

	_, _, _, okd = decodePayload([]byte{0, 1})
	assert.False(t, okd)
}

func TestCSRFExemptsJSONAndGuardsForms(t *testing.T) {
	e := echo.New()
	e.Use(CSRF(CSRFConfig{Key: "k"}))
	e.GET("/api/csrf-token", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"csrfToken": CSRFToken(c)})
	})
	e.POST("/api/login", ok)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"csrfToken":""`)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("email=a"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
