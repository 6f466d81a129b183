package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/contesttracker/tracker/internal/session"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	// Static files (served from embedded filesystem)
	r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))

	r.Get("/share.png", h.handleShareQR)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}

	// Session-scoped routes
	r.Group(func(r chi.Router) {
		r.Use(h.Sessions.Middleware)

		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)
		r.Get("/ws", h.Hub.ServeWs)

		// Pages (logged in)
		r.Group(func(r chi.Router) {
			r.Use(session.RequireLogin)
			r.Get("/", h.handleIndex)
			r.Post("/filters", h.handleSetFilters)
			r.Post("/select", h.handleSelectCompetition)
			r.Post("/participants", h.handleAddParticipant)
		})

		// JSON (logged in)
		r.Group(func(r chi.Router) {
			r.Use(session.RequireLoginAPI)
			r.Get("/state", h.handleGetState)
		})
	})

	return r
}
