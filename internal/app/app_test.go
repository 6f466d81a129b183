package app

import (
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/contesttracker/tracker/internal/config"
	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/web"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.APIBaseURL = "http://127.0.0.1:1"
	cfg.DemoDB = filepath.Join(t.TempDir(), "demo.db")
	return cfg
}

func createTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	a, err := New(cfg, logger.NewNop(), web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNew_InitializesApp(t *testing.T) {
	a := createTestApp(t, testConfig(t))

	if a.handlers == nil || a.router == nil {
		t.Fatal("expected handlers and router to be initialized")
	}
	if a.stub != nil {
		t.Error("expected no stub outside demo mode")
	}
	if !strings.HasPrefix(a.ShareURL(), "http://") || !strings.HasSuffix(a.ShareURL(), ":8081") {
		t.Errorf("unexpected share URL %q", a.ShareURL())
	}
	if a.api.BaseURL() != "http://127.0.0.1:1" {
		t.Errorf("expected configured API URL, got %q", a.api.BaseURL())
	}
}

func TestNew_FailsWithMissingTemplates(t *testing.T) {
	_, err := New(testConfig(t), logger.NewNop(), web.GetStaticFS(), web.GetStaticFS())
	if err == nil {
		t.Error("expected error for missing templates")
	}
}

func TestNew_FailsWithBadDemoDB(t *testing.T) {
	cfg := testConfig(t)
	cfg.Demo = true
	cfg.DemoDB = "/nonexistent/dir/demo.db"

	if _, err := New(cfg, logger.NewNop(), web.GetTemplatesFS(), web.GetStaticFS()); err == nil {
		t.Error("expected error for unwritable demo database")
	}
}

func TestApp_Router_ServesRequests(t *testing.T) {
	a := createTestApp(t, testConfig(t))

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for /login, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "contesttracker_sessions") {
		t.Errorf("expected session gauge in metrics, got %d", rec.Code)
	}
}

func TestApp_UnreachableAPI_LoginFails(t *testing.T) {
	a := createTestApp(t, testConfig(t))

	form := url.Values{"userName": {"admin"}, "password": {"admin"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "Invalid username or password.") {
		t.Error("expected invalid credentials message when the API is down")
	}
}

func TestApp_Close_Idempotent(t *testing.T) {
	a := createTestApp(t, testConfig(t))

	a.Close()
	a.Close()
}

// TestApp_DemoEndToEnd drives the UI against the built-in backend over real HTTP
func TestApp_DemoEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.Demo = true
	a := createTestApp(t, cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go a.Serve(ln)
	base := "http://" + ln.Addr().String()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 5 * time.Second}

	waitFor(t, client, base+"/login")

	resp, err := client.PostForm(base+"/login", url.Values{"userName": {"admin"}, "password": {"admin"}})
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Poetry - 9-11 years old") {
		t.Fatalf("expected seeded competitions after login, got: %s", body)
	}

	resp, err = client.PostForm(base+"/participants", url.Values{
		"name": {"Alice"}, "age": {"10"}, "comp1": {"Drawing"}, "comp2": {"Drawing"},
	})
	if err != nil {
		t.Fatal(err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "1 participant<") {
		t.Errorf("expected Alice counted once, got: %s", body)
	}

	resp, err = client.PostForm(base+"/filters", url.Values{"type": {"Drawing"}, "age": {"9-11 years old"}})
	if err != nil {
		t.Fatal(err)
	}
	body = readBody(t, resp)
	if strings.Contains(body, "Poetry - ") {
		t.Error("expected only drawing competitions")
	}

	resp, err = client.Get(base + "/state")
	if err != nil {
		t.Fatal(err)
	}
	state := readBody(t, resp)
	if !strings.Contains(state, `"type":"Drawing"`) {
		t.Errorf("unexpected state: %s", state)
	}
}

func waitFor(t *testing.T, client *http.Client, u string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if resp, err := client.Get(u); err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s did not start", u)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
