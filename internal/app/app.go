package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/contesttracker/tracker/internal/config"
	"github.com/contesttracker/tracker/internal/handlers"
	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/metrics"
	"github.com/contesttracker/tracker/internal/services"
	"github.com/contesttracker/tracker/internal/session"
	"github.com/contesttracker/tracker/internal/stubapi"
	"github.com/contesttracker/tracker/internal/viewstate"
	"github.com/contesttracker/tracker/internal/websocket"
	"github.com/contesttracker/tracker/pkg/contestapi"
)

const sweepInterval = time.Minute

// App holds all application dependencies
type App struct {
	cfg      config.Config
	log      logger.Logger
	api      *contestapi.HTTPClient
	sessions *session.Manager
	hub      *websocket.Hub
	metrics  *metrics.Metrics
	handlers *handlers.Handlers
	router   chi.Router
	stub     *stubapi.Repository // demo mode only
	shareURL string

	cancel context.CancelFunc
	mu     sync.Mutex
	server *http.Server
}

// New creates and initializes a new application instance
func New(cfg config.Config, log logger.Logger, templatesFS, staticFS fs.FS) (*App, error) {
	m := metrics.New()

	api := contestapi.NewHTTPClientWithHTTPClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.RequestTimeout}, log)
	api.SetObserver(m.ObserveAPICall)

	hub := websocket.New(log)
	hub.Start()

	sessions := session.NewManager(cfg.SessionTTL, func(id string) *viewstate.Store {
		return viewstate.NewStore(api, log,
			viewstate.WithOnChange(func(st viewstate.State) { hub.PublishState(id, st) }),
			viewstate.WithStaleHook(m.StaleDiscarded),
		)
	}, session.WithOnExpire(hub.DropSession))
	m.RegisterSessionGauge(sessions.Len)

	var stub *stubapi.Repository
	if cfg.Demo {
		var err error
		if stub, err = openStub(cfg); err != nil {
			return nil, fmt.Errorf("failed to open demo backend: %w", err)
		}
	}

	shareURL := fmt.Sprintf("http://%s:%d", lanAddress(systemInterfaces{}), cfg.Port)

	h, err := handlers.New(
		services.NewParticipantService(log, api),
		services.NewAuthService(log, api),
		sessions,
		hub,
		m.Handler(),
		templatesFS,
		handlers.NewStaticServer(staticFS),
		shareURL,
		log,
	)
	if err != nil {
		if stub != nil {
			stub.Close()
		}
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	router := h.Router()
	if stub != nil {
		stubapi.NewServer(stub, log).Mount(router)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go sessions.RunSweeper(ctx, sweepInterval)

	return &App{
		cfg:      cfg,
		log:      log,
		api:      api,
		sessions: sessions,
		hub:      hub,
		metrics:  m,
		handlers: h,
		router:   router,
		stub:     stub,
		shareURL: shareURL,
		cancel:   cancel,
	}, nil
}

// openStub opens and seeds the demo database
func openStub(cfg config.Config) (*stubapi.Repository, error) {
	repo, err := stubapi.NewRepository(cfg.DemoDB)
	if err != nil {
		return nil, err
	}
	if _, err := repo.Seed(context.Background(), cfg.DemoUser, cfg.DemoPassword); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.router
}

// ShareURL returns the LAN address of the tracker
func (a *App) ShareURL() string {
	return a.shareURL
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}

	a.mu.Lock()
	srv := a.server
	a.mu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.log.Warn("Server shutdown", "error", err)
		}
	}

	if a.stub != nil {
		if err := a.stub.Close(); err != nil {
			a.log.Warn("Failed to close demo database", "error", err)
		}
	}
}

// Run listens on addr and serves until Close
func (a *App) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return a.Serve(ln)
}

// Serve serves HTTP on ln until Close
func (a *App) Serve(ln net.Listener) error {
	if a.stub != nil {
		// the stub is served by this process, so the client calls back into it
		port := ln.Addr().(*net.TCPAddr).Port
		a.api.SetBaseURL(fmt.Sprintf("http://127.0.0.1:%d", port))
		a.log.Info("Demo backend enabled", "db", a.cfg.DemoDB, "user", a.cfg.DemoUser)
	}

	srv := &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()

	a.log.Info("Server starting", "url", a.shareURL, "addr", ln.Addr().String())
	a.log.Info("Contest API", "url", a.api.BaseURL())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
