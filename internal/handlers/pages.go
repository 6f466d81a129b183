package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/contesttracker/tracker/internal/errors"
	"github.com/contesttracker/tracker/internal/models"
	"github.com/contesttracker/tracker/internal/services"
	"github.com/contesttracker/tracker/internal/session"
	"github.com/contesttracker/tracker/internal/viewstate"
)

// IndexPageData holds the data passed to the main page
type IndexPageData struct {
	Title    string
	State    viewstate.State
	Types    []models.CompetitionType
	Ages     []models.AgeCategory
	Form     services.ParticipantForm
	Error    string
	// Notice reports a rejected filter or selection post
	Notice   string
	ShareURL string
}

// Notices for rejected form posts
const (
	MsgInvalidFilters     = "Unknown filter value."
	MsgInvalidCompetition = "Invalid competition id."
	MsgCompetitionGone    = "That competition is no longer in the list."
)

func (h *Handlers) indexData(st viewstate.State) IndexPageData {
	return IndexPageData{
		Title:    "Contest Tracker",
		State:    st,
		Types:    models.CompetitionTypes(),
		Ages:     models.AgeCategories(),
		ShareURL: h.ShareURL,
	}
}

// handleIndex renders the competition tracker page
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	h.render(w, h.templates.Index, h.indexData(s.Store.Snapshot()))
}

// handleSetFilters applies the filter bar. Submitting the same values again
// still reloads and clears the selection.
func (h *Handlers) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())

	filters, err := models.ParseFilters(r.FormValue("type"), r.FormValue("age"))
	if err != nil {
		h.renderNotice(w, s, MsgInvalidFilters)
		return
	}
	if err := s.Store.SetFilters(context.WithoutCancel(r.Context()), filters); err != nil {
		h.renderNotice(w, s, MsgInvalidFilters)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSelectCompetition selects a competition, or clears the selection when id is empty
func (h *Handlers) handleSelectCompetition(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())

	var id *int
	if raw := strings.TrimSpace(r.FormValue("id")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.renderNotice(w, s, MsgInvalidCompetition)
			return
		}
		id = &n
	}
	if err := s.Store.SelectCompetition(context.WithoutCancel(r.Context()), id); err != nil {
		h.Log.Debug("Selection rejected", "error", err)
		h.renderNotice(w, s, MsgCompetitionGone)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderNotice renders the current view with msg above it
func (h *Handlers) renderNotice(w http.ResponseWriter, s *session.Session, msg string) {
	data := h.indexData(s.Store.Snapshot())
	data.Notice = msg
	h.renderStatus(w, http.StatusBadRequest, h.templates.Index, data)
}

// handleAddParticipant runs the add-participant flow. On failure the page is
// rendered again with the message and the submitted values kept.
func (h *Handlers) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	form := services.ParticipantForm{
		Name:  r.FormValue("name"),
		Age:   r.FormValue("age"),
		Comp1: r.FormValue("comp1"),
		Comp2: r.FormValue("comp2"),
	}

	p, err := h.Participants.AddParticipant(context.WithoutCancel(r.Context()), s.Store, form)
	if err != nil {
		data := h.indexData(s.Store.Snapshot())
		data.Form = form
		data.Error = errors.MessageOf(err, services.MsgAddParticipantFailed)
		h.renderStatus(w, http.StatusUnprocessableEntity, h.templates.Index, data)
		return
	}

	h.Log.Info("Participant added", "participant_id", p.ID, "name", p.Name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleGetState returns the session's view state as JSON
func (h *Handlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	respondOK(w, s.Store.Snapshot())
}

// handleShareQR returns a QR code PNG pointing at the tracker's LAN address
func (h *Handlers) handleShareQR(w http.ResponseWriter, r *http.Request) {
	if h.ShareURL == "" {
		h.respondError(w, NotFound("No share address available"))
		return
	}
	png, err := qrcode.Encode(h.ShareURL, qrcode.Medium, 256)
	if err != nil {
		h.respondError(w, errors.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}
