package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/services"
	"github.com/contesttracker/tracker/internal/session"
	"github.com/contesttracker/tracker/internal/websocket"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Templates holds all parsed HTML templates
type Templates struct {
	Login *template.Template
	Index *template.Template
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Participants services.ParticipantServicer
	Auth         services.AuthServicer
	Sessions     *session.Manager
	Hub          *websocket.Hub
	Metrics      http.Handler
	Log          logger.Logger
	// ShareURL is the address other devices on the LAN can open
	ShareURL     string
	templates    *Templates
	staticServer http.Handler
}

// New creates a new Handlers instance with all dependencies
func New(
	participants services.ParticipantServicer,
	auth services.AuthServicer,
	sessions *session.Manager,
	hub *websocket.Hub,
	metrics http.Handler,
	templatesFS fs.FS,
	staticServer http.Handler,
	shareURL string,
	log logger.Logger,
) (*Handlers, error) {
	templates, err := loadTemplates(templatesFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	return &Handlers{
		Participants: participants,
		Auth:         auth,
		Sessions:     sessions,
		Hub:          hub,
		Metrics:      metrics,
		Log:          log,
		ShareURL:     shareURL,
		templates:    templates,
		staticServer: staticServer,
	}, nil
}

var templateFuncs = template.FuncMap{
	"participantCount": participantCount,
}

// participantCount renders "1 participant" or "N participants"
func participantCount(n int) string {
	if n == 1 {
		return "1 participant"
	}
	return fmt.Sprintf("%d participants", n)
}

func parsePage(templatesFS fs.FS, files ...string) (*template.Template, error) {
	return template.New(files[0]).Funcs(templateFuncs).ParseFS(templatesFS, files...)
}

// loadTemplates parses all templates once at startup
func loadTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{}
	var err error

	if t.Login, err = parsePage(templatesFS, "layout.html", "login.html"); err != nil {
		return nil, fmt.Errorf("login template: %w", err)
	}
	if t.Index, err = parsePage(templatesFS, "layout.html", "index.html", "partials.html"); err != nil {
		return nil, fmt.Errorf("index template: %w", err)
	}

	return t, nil
}

// render executes the "layout" template of page
func (h *Handlers) render(w http.ResponseWriter, page *template.Template, data interface{}) {
	h.renderStatus(w, http.StatusOK, page, data)
}

func (h *Handlers) renderStatus(w http.ResponseWriter, status int, page *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.ExecuteTemplate(w, "layout", data); err != nil {
		h.Log.Error("Template render failed", "template", page.Name(), "error", err)
	}
}
