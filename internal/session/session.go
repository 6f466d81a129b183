// Package session keeps one view-state store per browser, keyed by a cookie.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contesttracker/tracker/internal/viewstate"
)

const (
	CookieName = "contesttracker_session"
	DefaultTTL = 24 * time.Hour
)

type ctxKey struct{}

// Session is one browser's view of the tracker
type Session struct {
	ID      string
	Store   *viewstate.Store
	expires time.Time
}

// StoreFactory builds the store for a new session
type StoreFactory func(id string) *viewstate.Store

// Manager tracks sessions in memory
type Manager struct {
	newStore StoreFactory
	ttl      time.Duration
	onExpire func(id string)
	now      func() time.Time

	sessions map[string]*Session
	mu       sync.RWMutex
}

// Option configures a Manager
type Option func(*Manager)

// WithOnExpire registers a callback for sessions dropped after their TTL
func WithOnExpire(fn func(id string)) Option {
	return func(m *Manager) {
		m.onExpire = fn
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager. A ttl of zero uses DefaultTTL.
func NewManager(ttl time.Duration, factory StoreFactory, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		newStore: factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the idle lifetime of a session
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a new logged-out session
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	s := &Session{
		ID:      id,
		Store:   m.newStore(id),
		expires: m.now().Add(m.ttl),
	}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Get returns a live session and extends its expiry
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, false
	}
	if m.now().After(s.expires) {
		delete(m.sessions, id)
		m.mu.Unlock()
		m.expired(id)
		return nil, false
	}
	s.expires = m.now().Add(m.ttl)
	m.mu.Unlock()
	return s, true
}

// Len returns the number of tracked sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes expired sessions and returns how many were dropped
func (m *Manager) Sweep() int {
	now := m.now()
	var dropped []string
	m.mu.Lock()
	for id, s := range m.sessions {
		if now.After(s.expires) {
			delete(m.sessions, id)
			dropped = append(dropped, id)
		}
	}
	m.mu.Unlock()
	for _, id := range dropped {
		m.expired(id)
	}
	return len(dropped)
}

// RunSweeper calls Sweep every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) expired(id string) {
	if m.onExpire != nil {
		m.onExpire(id)
	}
}

// FromRequest looks up the session named by the request cookie
func (m *Manager) FromRequest(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return m.Get(cookie.Value)
}

// Middleware attaches the caller's session to the request context,
// starting a new one when the cookie is missing or stale.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := m.FromRequest(r)
		if !ok {
			s = m.Create()
		}
		SetCookie(w, s.ID, m.ttl)
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

// RequireLogin redirects to the login page until the session has a user
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := FromContext(r.Context()); ok && s.Store.Snapshot().LoggedIn() {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})
}

// RequireLoginAPI middleware for JSON endpoints (returns 401)
func RequireLoginAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := FromContext(r.Context()); ok && s.Store.Snapshot().LoggedIn() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
	})
}

// NewContext returns a context carrying s
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by Middleware
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}

// SetCookie sets the session cookie on the response
func SetCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}
