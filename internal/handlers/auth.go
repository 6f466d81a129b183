package handlers

import (
	"context"
	"net/http"

	"github.com/contesttracker/tracker/internal/errors"
	"github.com/contesttracker/tracker/internal/services"
	"github.com/contesttracker/tracker/internal/session"
)

// LoginPageData holds data for the login template
type LoginPageData struct {
	Title    string
	UserName string
	Error    string
}

// handleLoginPage renders the login form
func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	if s.Store.Snapshot().LoggedIn() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.render(w, h.templates.Login, LoginPageData{Title: "Login"})
}

// handleLogin processes login form submission
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	form := services.LoginForm{
		UserName: r.FormValue("userName"),
		Password: r.FormValue("password"),
	}

	if _, err := h.Auth.Login(context.WithoutCancel(r.Context()), s.Store, form); err != nil {
		h.render(w, h.templates.Login, LoginPageData{
			Title:    "Login",
			UserName: form.UserName,
			Error:    errors.MessageOf(err, services.MsgInvalidCredentials),
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
