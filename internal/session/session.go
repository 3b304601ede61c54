// Package session keeps logged-in state on the server. The browser only
// holds a signed cookie naming the session id; the user data lives in a
// Store (Redis when available, process memory otherwise).
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/fitzone/internal/utils"
)

// ErrNoSession is returned when the request carries no valid session.
var ErrNoSession = errors.New("no session")

// Session is the server-side record of a login.
type Session struct {
	ID        string    `json:"id"`
	UserID    uint64    `json:"userId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store persists sessions by id. Get returns ErrNoSession for unknown or
// expired ids.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager issues, loads and destroys sessions behind a cookie.
type Manager struct {
	Store      Store
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// NewManager returns a Manager with defaults for empty fields.
func NewManager(store Store, secret string, ttl time.Duration, cookieName string, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if cookieName == "" {
		cookieName = "fitzone_session"
	}
	return &Manager{Store: store, Secret: secret, TTL: ttl, CookieName: cookieName, Secure: secure}
}

// Issue stores a new session for s (its ID and timestamps are assigned) and
// writes the cookie.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, s Session) (Session, error) {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	s.ExpiresAt = s.CreatedAt.Add(m.TTL)
	tok, err := utils.NewSessionToken(m.Secret, s.ID, m.TTL)
	if err != nil {
		return Session{}, err
	}
	if err := m.Store.Save(ctx, s); err != nil {
		return Session{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.CookieName,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		MaxAge:   int(m.TTL / time.Second),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Load resolves the request's cookie to its session.
func (m *Manager) Load(ctx context.Context, r *http.Request) (Session, error) {
	c, err := r.Cookie(m.CookieName)
	if err != nil || c.Value == "" {
		return Session{}, ErrNoSession
	}
	sid, err := utils.ParseSessionToken(m.Secret, c.Value)
	if err != nil {
		return Session{}, ErrNoSession
	}
	return m.Store.Get(ctx, sid)
}

// Destroy deletes the request's session, if any, and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	if c, cerr := r.Cookie(m.CookieName); cerr == nil {
		if sid, perr := utils.ParseSessionToken(m.Secret, c.Value); perr == nil {
			err = m.Store.Delete(ctx, sid)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}
