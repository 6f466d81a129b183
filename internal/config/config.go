// Package config loads settings from an optional .env file and CONTEST_*
// environment variables. Command-line flags are applied on top by main.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/contesttracker/tracker/internal/logger"
)

// EnvPrefix is prepended to every environment variable, e.g. CONTEST_API_URL
const EnvPrefix = "CONTEST"

// Config holds the runtime settings of the tracker
type Config struct {
	APIBaseURL     string
	Port           int
	LogLevel       string
	Demo           bool
	DemoDB         string
	DemoUser       string
	DemoPassword   string
	RequestTimeout time.Duration // 0 means no timeout
	OpenBrowser    bool
	NoKeyboard     bool
	SessionTTL     time.Duration
}

// Defaults returns the settings used when nothing else is configured
func Defaults() Config {
	return Config{
		APIBaseURL:   "http://localhost:8080",
		Port:         8081,
		LogLevel:     "info",
		DemoDB:       "contesttracker-demo.db",
		DemoUser:     "admin",
		DemoPassword: "admin",
		SessionTTL:   24 * time.Hour,
	}
}

// Load reads envFile (skipped when empty or missing) and then the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("api_url", d.APIBaseURL)
	v.SetDefault("port", d.Port)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("demo", d.Demo)
	v.SetDefault("demo_db", d.DemoDB)
	v.SetDefault("demo_user", d.DemoUser)
	v.SetDefault("demo_password", d.DemoPassword)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("open_browser", d.OpenBrowser)
	v.SetDefault("no_keyboard", d.NoKeyboard)
	v.SetDefault("session_ttl", d.SessionTTL)

	cfg := Config{
		APIBaseURL:     strings.TrimRight(v.GetString("api_url"), "/"),
		Port:           v.GetInt("port"),
		LogLevel:       v.GetString("log_level"),
		Demo:           v.GetBool("demo"),
		DemoDB:         v.GetString("demo_db"),
		DemoUser:       v.GetString("demo_user"),
		DemoPassword:   v.GetString("demo_password"),
		RequestTimeout: v.GetDuration("request_timeout"),
		OpenBrowser:    v.GetBool("open_browser"),
		NoKeyboard:     v.GetBool("no_keyboard"),
		SessionTTL:     v.GetDuration("session_ttl"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings are usable
func (c *Config) Validate() error {
	return validation.ValidateStruct(
		c,
		validation.Field(&c.APIBaseURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.By(logLevel)),
		validation.Field(&c.DemoDB, demoRules(c.Demo)...),
		validation.Field(&c.DemoUser, demoRules(c.Demo)...),
		validation.Field(&c.RequestTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.SessionTTL, validation.Min(time.Minute)),
	)
}

// demoRules makes a field required only in demo mode
func demoRules(demo bool) []validation.Rule {
	if demo {
		return []validation.Rule{validation.Required}
	}
	return nil
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

func logLevel(value interface{}) error {
	s, _ := value.(string)
	switch strings.ToLower(s) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %q", s)
}

// Level returns the parsed log level
func (c Config) Level() slog.Level {
	return logger.ParseLevel(c.LogLevel)
}
