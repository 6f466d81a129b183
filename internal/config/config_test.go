package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.RequestTimeout != 0 {
		t.Error("expected no request timeout by default")
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CONTEST_API_URL", "http://contests.example:9000/")
	t.Setenv("CONTEST_PORT", "9090")
	t.Setenv("CONTEST_LOG_LEVEL", "debug")
	t.Setenv("CONTEST_DEMO", "true")
	t.Setenv("CONTEST_REQUEST_TIMEOUT", "5s")
	t.Setenv("CONTEST_SESSION_TTL", "2h")
	t.Setenv("CONTEST_OPEN_BROWSER", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIBaseURL != "http://contests.example:9000" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIBaseURL)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if !cfg.Demo || !cfg.OpenBrowser {
		t.Error("expected boolean settings from environment")
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected 2h TTL, got %v", cfg.SessionTTL)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Level())
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CONTEST_PORT=7070\nCONTEST_DEMO_USER=judge\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets process variables; make sure they are cleaned up
	t.Setenv("CONTEST_PORT", "")
	os.Unsetenv("CONTEST_PORT")
	t.Setenv("CONTEST_DEMO_USER", "")
	os.Unsetenv("CONTEST_DEMO_USER")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("expected port from .env, got %d", cfg.Port)
	}
	if cfg.DemoUser != "judge" {
		t.Errorf("expected demo user from .env, got %q", cfg.DemoUser)
	}
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CONTEST_PORT=7070\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONTEST_PORT", "6060")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 6060 {
		t.Errorf("expected environment to win, got %d", cfg.Port)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("expected missing file to be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad scheme", func(c *Config) { c.APIBaseURL = "ftp://x" }, true},
		{"no host", func(c *Config) { c.APIBaseURL = "http://" }, true},
		{"empty url", func(c *Config) { c.APIBaseURL = "" }, true},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"negative port", func(c *Config) { c.Port = -1 }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, true},
		{"tiny session ttl", func(c *Config) { c.SessionTTL = time.Second }, true},
		{"demo without db", func(c *Config) { c.Demo = true; c.DemoDB = "" }, true},
		{"db not needed outside demo", func(c *Config) { c.DemoDB = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
