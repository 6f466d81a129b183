package services

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	apperrors "github.com/contesttracker/tracker/internal/errors"
	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/models"
	"github.com/contesttracker/tracker/pkg/contestapi"
)

// AuthService handles the login flow against the remote API
type AuthService struct {
	log logger.Logger
	api contestapi.Client
}

// NewAuthService creates a new AuthService
func NewAuthService(log logger.Logger, api contestapi.Client) *AuthService {
	return &AuthService{
		log: log,
		api: api,
	}
}

// LoginForm holds the submitted credentials
type LoginForm struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

func (f *LoginForm) Validate() error {
	return validation.ValidateStruct(
		f,
		validation.Field(&f.UserName, validation.Required.Error(MsgInvalidCredentials)),
		validation.Field(&f.Password, validation.Required.Error(MsgInvalidCredentials)),
	)
}

// Login checks the credentials with the API. On success the view becomes
// logged in and loads its competitions; any failure yields the fixed
// invalid-credentials message and leaves the view logged out.
func (s *AuthService) Login(ctx context.Context, view ViewState, form LoginForm) (*models.User, error) {
	form.UserName = strings.TrimSpace(form.UserName)
	if err := form.Validate(); err != nil {
		return nil, firstError(err, "userName", "password")
	}

	user, err := s.api.Login(ctx, form.UserName, form.Password)
	if err != nil {
		s.log.Warn("Login failed", "user", form.UserName, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrUnauthorized, MsgInvalidCredentials)
	}
	if user == nil || user.UserName == "" {
		s.log.Warn("Login returned no user", "user", form.UserName)
		return nil, apperrors.Unauthorized(MsgInvalidCredentials)
	}

	s.log.Info("User logged in", "user", user.UserName, "user_id", user.ID)
	view.LoginSucceeded(ctx, *user)
	return user, nil
}
