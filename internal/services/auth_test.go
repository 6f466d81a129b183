package services_test

import (
	"context"
	"testing"

	"github.com/contesttracker/tracker/internal/errors"
	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/services"
	"github.com/contesttracker/tracker/internal/viewstate"
	"github.com/contesttracker/tracker/pkg/contestapi"
)

func TestLogin_Success(t *testing.T) {
	api := contestapi.NewMockClient()
	store := viewstate.NewStore(api, logger.NewNop())
	svc := services.NewAuthService(logger.NewNop(), api)

	user, err := svc.Login(context.Background(), store, services.LoginForm{UserName: " admin ", Password: "admin"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.UserName != "admin" {
		t.Errorf("expected admin, got %q", user.UserName)
	}

	st := store.Snapshot()
	if !st.LoggedIn() {
		t.Fatal("expected store to be logged in")
	}
	if len(st.Competitions) != 9 {
		t.Errorf("expected competitions loaded after login, got %d", len(st.Competitions))
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	api := contestapi.NewMockClient()
	store := viewstate.NewStore(api, logger.NewNop())
	svc := services.NewAuthService(logger.NewNop(), api)

	_, err := svc.Login(context.Background(), store, services.LoginForm{UserName: "admin", Password: "wrong"})
	if !errors.Is(err, errors.ErrUnauthorized) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if got := errors.MessageOf(err, ""); got != services.MsgInvalidCredentials {
		t.Errorf("expected %q, got %q", services.MsgInvalidCredentials, got)
	}

	if store.Snapshot().LoggedIn() {
		t.Error("expected store to stay logged out")
	}
	if n := len(api.CallsTo(contestapi.OpListCompetitions)); n != 0 {
		t.Errorf("expected no competition fetch, got %d", n)
	}
}

func TestLogin_TransportFailureUsesSameMessage(t *testing.T) {
	api := contestapi.NewMockClient(contestapi.WithError(contestapi.OpLogin, &contestapi.RequestFailed{
		Operation: contestapi.OpLogin,
		Message:   "Invalid username or password",
	}))
	store := viewstate.NewStore(api, logger.NewNop())
	svc := services.NewAuthService(logger.NewNop(), api)

	_, err := svc.Login(context.Background(), store, services.LoginForm{UserName: "admin", Password: "admin"})
	if got := errors.MessageOf(err, ""); got != services.MsgInvalidCredentials {
		t.Errorf("expected %q, got %q", services.MsgInvalidCredentials, got)
	}
}

func TestLogin_BlankFieldsSendNothing(t *testing.T) {
	tests := []services.LoginForm{
		{UserName: "", Password: "x"},
		{UserName: "  ", Password: "x"},
		{UserName: "admin", Password: ""},
	}

	for _, form := range tests {
		api := contestapi.NewMockClient()
		store := viewstate.NewStore(api, logger.NewNop())
		svc := services.NewAuthService(logger.NewNop(), api)

		_, err := svc.Login(context.Background(), store, form)
		if !errors.Is(err, errors.ErrValidation) {
			t.Errorf("form %+v: expected validation error, got %v", form, err)
		}
		if got := errors.MessageOf(err, ""); got != services.MsgInvalidCredentials {
			t.Errorf("form %+v: expected %q, got %q", form, services.MsgInvalidCredentials, got)
		}
		if n := len(api.Calls()); n != 0 {
			t.Errorf("form %+v: expected no calls, got %d", form, n)
		}
	}
}
