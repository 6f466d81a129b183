// Package stubapi serves the contest REST API from a local SQLite database.
// It backs demo mode and end-to-end tests of the HTTP client.
package stubapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/models"
)

// Store is the persistence used by Server
type Store interface {
	ListCompetitions(ctx context.Context, typ, age string) ([]models.Competition, error)
	GetCompetition(ctx context.Context, id int) (*models.Competition, error)
	CreateCompetition(ctx context.Context, dto models.CompetitionDTO) (*models.Competition, error)
	UpdateCompetition(ctx context.Context, id int, dto models.CompetitionDTO) (*models.Competition, error)
	DeleteCompetition(ctx context.Context, id int) error
	CompetitionFor(ctx context.Context, typ models.CompetitionType, age int) (*models.Competition, error)
	Enroll(ctx context.Context, participantID, competitionID int) error

	ListParticipants(ctx context.Context) ([]models.Participant, error)
	ParticipantsForCompetition(ctx context.Context, competitionID int) ([]models.Participant, error)
	GetParticipant(ctx context.Context, id int) (*models.Participant, error)
	CreateParticipant(ctx context.Context, dto models.CreateParticipantDTO) (*models.Participant, error)
	UpdateParticipant(ctx context.Context, id int, dto models.UpdateParticipantDTO) (*models.Participant, error)
	DeleteParticipant(ctx context.Context, id int) error

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	CreateUser(ctx context.Context, dto models.CreateUserDTO) (*models.User, error)
	Authenticate(ctx context.Context, userName, password string) (*models.User, error)
}

var _ Store = (*Repository)(nil)

// Server handles the /api routes
type Server struct {
	store Store
	log   logger.Logger
}

// NewServer creates a Server over store
func NewServer(store Store, log logger.Logger) *Server {
	return &Server{store: store, log: log}
}

// Mount registers the /api routes on r
func (s *Server) Mount(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/competitions", func(r chi.Router) {
			r.Get("/", s.listCompetitions)
			r.Post("/", s.createCompetition)
			r.Post("/enroll", s.enroll)
			r.Get("/type/{type}", s.listCompetitions)
			r.Get("/type/{type}/age/{age}", s.listCompetitions)
			r.Get("/age/{age}", s.listCompetitions)
			r.Get("/{id}", s.getCompetition)
			r.Put("/{id}", s.updateCompetition)
			r.Delete("/{id}", s.deleteCompetition)
		})
		r.Route("/participants", func(r chi.Router) {
			r.Get("/", s.listParticipants)
			r.Post("/", s.createParticipant)
			r.Get("/comp/{id}", s.participantsForCompetition)
			r.Get("/{id}", s.getParticipant)
			r.Put("/{id}", s.updateParticipant)
			r.Delete("/{id}", s.deleteParticipant)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.listUsers)
			r.Post("/", s.createUser)
			r.Post("/login", s.login)
			r.Get("/{id}", s.getUser)
		})
	})
}

// Handler returns a standalone router serving only the API
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

// ==================== helpers ====================

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case stderrors.Is(err, ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case stderrors.Is(err, ErrNoMatchingCompetition):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		s.log.Error("Stub API error", "method", r.Method, "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// pathParam returns an unescaped URL parameter
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func intParam(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	return id, err == nil
}

func decode(r *http.Request, target interface{}) error {
	return json.NewDecoder(r.Body).Decode(target)
}

// ==================== competitions ====================

func (s *Server) listCompetitions(w http.ResponseWriter, r *http.Request) {
	typ := pathParam(r, "type")
	age := pathParam(r, "age")
	competitions, err := s.store.ListCompetitions(r.Context(), typ, age)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, competitions)
}

func (s *Server) getCompetition(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	c, err := s.store.GetCompetition(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) createCompetition(w http.ResponseWriter, r *http.Request) {
	var dto models.CompetitionDTO
	if err := decode(r, &dto); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if !dto.Type.Valid() || !dto.AgeCategory.Valid() {
		badRequest(w, "unknown type or age category")
		return
	}
	c, err := s.store.CreateCompetition(r.Context(), dto)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/competitions/"+strconv.Itoa(c.ID))
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCompetition(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var dto models.CompetitionDTO
	if err := decode(r, &dto); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	c, err := s.store.UpdateCompetition(r.Context(), id, dto)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCompetition(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := s.store.DeleteCompetition(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// enroll places the participant, for each requested type, in the competition
// whose age band contains the participant's age
func (s *Server) enroll(w http.ResponseWriter, r *http.Request) {
	var dto models.EnrollDTO
	if err := decode(r, &dto); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	ctx := r.Context()
	for _, typ := range dto.CompTypes {
		target, err := s.store.CompetitionFor(ctx, typ, dto.Participant.Age)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if err := s.store.Enroll(ctx, dto.Participant.ID, target.ID); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.log.Debug("Participant enrolled",
			"participant_id", dto.Participant.ID,
			"competition_id", target.ID,
			"type", string(typ),
		)
	}
	w.WriteHeader(http.StatusOK)
}

// ==================== participants ====================

func (s *Server) listParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := s.store.ListParticipants(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, participants)
}

func (s *Server) participantsForCompetition(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	participants, err := s.store.ParticipantsForCompetition(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, participants)
}

func (s *Server) getParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	p, err := s.store.GetParticipant(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) createParticipant(w http.ResponseWriter, r *http.Request) {
	var dto models.CreateParticipantDTO
	if err := decode(r, &dto); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if dto.Name == "" || dto.Age < 0 {
		badRequest(w, "name and a non-negative age are required")
		return
	}
	p, err := s.store.CreateParticipant(r.Context(), dto)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/participants/"+strconv.Itoa(p.ID))
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) updateParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var dto models.UpdateParticipantDTO
	if err := decode(r, &dto); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	p, err := s.store.UpdateParticipant(r.Context(), id, dto)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) deleteParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := s.store.DeleteParticipant(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==================== users ====================

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	u, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var dto models.CreateUserDTO
	if err := decode(r, &dto); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	if dto.UserName == "" {
		badRequest(w, "userName is required")
		return
	}
	u, err := s.store.CreateUser(r.Context(), dto)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/users/"+strconv.Itoa(u.ID))
	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	u, err := s.store.Authenticate(r.Context(), req.UserName, req.Password)
	if stderrors.Is(err, ErrNotFound) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
