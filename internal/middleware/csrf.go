package middleware

import (
	"crypto/sha256"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/labstack/echo/v4"
)

// CSRFConfig configures the form-post CSRF guard.
type CSRFConfig struct {
	Key            string
	Secure         bool
	TrustedOrigins []string
}

// CSRF protects form submissions with gorilla/csrf. JSON requests are
// exempt: browsers cannot send them cross-site without CORS approval.
func CSRF(cfg CSRFConfig) echo.MiddlewareFunc {
	key := sha256.Sum256([]byte(cfg.Key))
	protect := csrf.Protect(
		key[:],
		csrf.Secure(cfg.Secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(cfg.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"success":false,"message":"invalid CSRF token"}`))
		})),
	)
	return echo.WrapMiddleware(func(next http.Handler) http.Handler {
		guarded := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				next.ServeHTTP(w, r)
				return
			}
			if !cfg.Secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			guarded.ServeHTTP(w, r)
		})
	})
}

// CSRFToken returns the token for the current request, or "" when the
// guard is not installed.
func CSRFToken(c echo.Context) string {
	return csrf.Token(c.Request())
}
