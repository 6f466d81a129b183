package services

import (
	"context"

	"github.com/contesttracker/tracker/internal/models"
	"github.com/contesttracker/tracker/internal/viewstate"
)

// ViewState receives the outcome of the flows in this package
type ViewState interface {
	LoginSucceeded(ctx context.Context, user models.User)
	ParticipantAdded(ctx context.Context)
}

// ParticipantServicer defines the interface for the add-participant flow
type ParticipantServicer interface {
	AddParticipant(ctx context.Context, view ViewState, form ParticipantForm) (*models.Participant, error)
}

// AuthServicer defines the interface for the login flow
type AuthServicer interface {
	Login(ctx context.Context, view ViewState, form LoginForm) (*models.User, error)
}

// Ensure concrete types implement interfaces
var (
	_ ParticipantServicer = (*ParticipantService)(nil)
	_ AuthServicer        = (*AuthService)(nil)
	_ ViewState           = (*viewstate.Store)(nil)
)
