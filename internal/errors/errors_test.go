package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
		msg  string
	}{
		{"NotFound", NotFound("competition not found"), ErrNotFound, "competition not found"},
		{"NotFoundf", NotFoundf("competition %d not found", 7), ErrNotFound, "competition 7 not found"},
		{"Validation", Validation("Name is required."), ErrValidation, "Name is required."},
		{"Validationf", Validationf("unknown type %q", "Chess"), ErrValidation, `unknown type "Chess"`},
		{"Conflict", Conflict("duplicate"), ErrConflict, "duplicate"},
		{"InvalidInput", InvalidInput("bad id"), ErrInvalidInput, "bad id"},
		{"Unauthorized", Unauthorized("Invalid username or password."), ErrUnauthorized, "Invalid username or password."},
		{"Internalf", Internalf("boom %d", 1), ErrInternal, "boom 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tt.err.Kind)
			}
			if tt.err.Message != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, tt.err.Message)
			}
			if tt.err.Err != nil {
				t.Errorf("expected no wrapped error, got %v", tt.err.Err)
			}
		})
	}
}

func TestError_WithWrappedError(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrNetwork, "fetch competitions")

	if err.Error() != "fetch competitions: connection refused" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestInternal(t *testing.T) {
	cause := errors.New("db closed")
	err := Internal(cause)

	if err.Kind != ErrInternal {
		t.Errorf("expected ErrInternal, got %v", err.Kind)
	}
	if err.Message != "internal error" {
		t.Errorf("expected 'internal error', got %q", err.Message)
	}
	if errors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return cause")
	}
}

type classifiedErr struct{ kind Kind }

func (c classifiedErr) Error() string   { return "classified" }
func (c classifiedErr) ErrorKind() Kind { return c.kind }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"app error", Validation("x"), ErrValidation},
		{"wrapped app error", fmt.Errorf("outer: %w", NotFound("x")), ErrNotFound},
		{"classified", classifiedErr{kind: ErrNetwork}, ErrNetwork},
		{"wrapped classified", fmt.Errorf("outer: %w", classifiedErr{kind: ErrDecode}), ErrDecode},
		{"plain", errors.New("plain"), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	if Is(nil, ErrInternal) {
		t.Error("nil error should not match any kind")
	}
	if !Is(Validation("x"), ErrValidation) {
		t.Error("expected validation error to match ErrValidation")
	}
	if Is(Validation("x"), ErrNetwork) {
		t.Error("validation error should not match ErrNetwork")
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		ErrInternal:     "internal",
		ErrNotFound:     "not_found",
		ErrValidation:   "validation",
		ErrConflict:     "conflict",
		ErrInvalidInput: "invalid_input",
		ErrNetwork:      "network",
		ErrDecode:       "decode",
		ErrUnauthorized: "unauthorized",
	}
	for kind, want := range tests {
		if kind.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestMessageOf(t *testing.T) {
	wrapped := Wrap(errors.New("dial tcp: refused"), ErrNetwork, "Failed to add participant. Please try again.")
	if got := MessageOf(wrapped, "fallback"); got != "Failed to add participant. Please try again." {
		t.Errorf("MessageOf() = %q", got)
	}
	if got := MessageOf(errors.New("plain"), "fallback"); got != "fallback" {
		t.Errorf("expected fallback for plain error, got %q", got)
	}
}
