package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/models"
	"github.com/contesttracker/tracker/internal/viewstate"
	"github.com/contesttracker/tracker/pkg/contestapi"
)

func newTestManager(ttl time.Duration, opts ...Option) *Manager {
	api := contestapi.NewMockClient()
	return NewManager(ttl, func(string) *viewstate.Store {
		return viewstate.NewStore(api, logger.NewNop())
	}, opts...)
}

// fakeClock is advanced manually by tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m := newTestManager(0)
	if m.TTL() != DefaultTTL {
		t.Errorf("expected default TTL, got %v", m.TTL())
	}
}

func TestCreate_ReturnsUniqueSessions(t *testing.T) {
	m := newTestManager(time.Hour)

	a := m.Create()
	b := m.Create()

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
	if len(a.ID) != 36 {
		t.Errorf("expected uuid string, got %q", a.ID)
	}
	if a.Store == nil || a.Store == b.Store {
		t.Error("expected each session to own a store")
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", m.Len())
	}
}

func TestGet_Unknown(t *testing.T) {
	m := newTestManager(time.Hour)

	if _, ok := m.Get("nope"); ok {
		t.Error("expected unknown id to be rejected")
	}
	if _, ok := m.Get(""); ok {
		t.Error("expected empty id to be rejected")
	}
}

func TestGet_ExpiredSession(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	var expired []string
	m := newTestManager(time.Minute, WithClock(clock.Now), WithOnExpire(func(id string) {
		expired = append(expired, id)
	}))

	s := m.Create()
	clock.Advance(30 * time.Second)
	if _, ok := m.Get(s.ID); !ok {
		t.Fatal("expected session to be live")
	}

	// Get renewed the expiry, so another 59s is still fine
	clock.Advance(59 * time.Second)
	if _, ok := m.Get(s.ID); !ok {
		t.Fatal("expected session to be renewed")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := m.Get(s.ID); ok {
		t.Error("expected session to be expired")
	}
	if len(expired) != 1 || expired[0] != s.ID {
		t.Errorf("expected expire callback for %s, got %v", s.ID, expired)
	}
	if m.Len() != 0 {
		t.Errorf("expected expired session removed, got %d", m.Len())
	}
}

func TestSweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m := newTestManager(time.Minute, WithClock(clock.Now))

	old := m.Create()
	clock.Advance(45 * time.Second)
	fresh := m.Create()
	clock.Advance(30 * time.Second)

	if n := m.Sweep(); n != 1 {
		t.Errorf("expected 1 session swept, got %d", n)
	}
	if _, ok := m.Get(old.ID); ok {
		t.Error("expected old session gone")
	}
	if _, ok := m.Get(fresh.ID); !ok {
		t.Error("expected fresh session kept")
	}
}

func TestRunSweeper_StopsOnCancel(t *testing.T) {
	m := newTestManager(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestMiddleware_CreatesSessionAndCookie(t *testing.T) {
	m := newTestManager(time.Hour)

	var seen *Session
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if seen == nil {
		t.Fatal("expected session in context")
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != seen.ID {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}
	if !cookies[0].HttpOnly || cookies[0].Path != "/" {
		t.Error("expected HttpOnly cookie on /")
	}
}

func TestMiddleware_ReusesExistingSession(t *testing.T) {
	m := newTestManager(time.Hour)
	existing := m.Create()

	var seen *Session
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: existing.ID})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != existing {
		t.Error("expected the existing session to be reused")
	}
	if m.Len() != 1 {
		t.Errorf("expected no new session, got %d", m.Len())
	}
}

func TestMiddleware_ReplacesUnknownCookie(t *testing.T) {
	m := newTestManager(time.Hour)

	var seen *Session
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen == nil || seen.ID == "stale" {
		t.Errorf("expected a fresh session, got %+v", seen)
	}
}

func TestRequireLogin(t *testing.T) {
	m := newTestManager(time.Hour)
	s := m.Create()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// logged out: redirect
	req := httptest.NewRequest("GET", "/", nil).WithContext(NewContext(context.Background(), s))
	rr := httptest.NewRecorder()
	RequireLogin(ok).ServeHTTP(rr, req)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login, got %d %s", rr.Code, rr.Header().Get("Location"))
	}

	// logged in: pass through
	s.Store.LoginSucceeded(context.Background(), models.User{ID: 1, UserName: "admin"})
	rr = httptest.NewRecorder()
	RequireLogin(ok).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}

func TestRequireLoginAPI_Returns401(t *testing.T) {
	handler := RequireLoginAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/state", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Error("expected JSON content type")
	}
	if !strings.Contains(rr.Body.String(), "UNAUTHORIZED") {
		t.Errorf("expected UNAUTHORIZED code in body, got: %s", rr.Body.String())
	}
}

func TestConcurrentSessionAccess(t *testing.T) {
	m := newTestManager(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := m.Create()
			m.Get(s.ID)
			m.Sweep()
		}()
	}
	wg.Wait()

	if m.Len() != 10 {
		t.Errorf("expected 10 sessions, got %d", m.Len())
	}
}
