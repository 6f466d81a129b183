package contestapi

import (
	"fmt"

	apperrors "github.com/contesttracker/tracker/internal/errors"
)

// RequestFailed is returned when the API answers with a non-2xx status or the
// request never completes. Status codes are not differentiated by callers.
type RequestFailed struct {
	Operation  string
	Message    string // human-readable, names the resource and operation
	StatusCode int    // 0 for transport failures
	Err        error
}

func (e *RequestFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *RequestFailed) Unwrap() error {
	return e.Err
}

// ErrorKind classifies the failure for internal/errors.KindOf
func (e *RequestFailed) ErrorKind() apperrors.Kind {
	return apperrors.ErrNetwork
}

// DecodeFailed is returned when a successful response body is not valid JSON
// for the declared shape. Structurally valid but semantically wrong bodies are
// passed through without inspection.
type DecodeFailed struct {
	Operation string
	Err       error
}

func (e *DecodeFailed) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Operation, e.Err)
}

func (e *DecodeFailed) Unwrap() error {
	return e.Err
}

// ErrorKind classifies the failure for internal/errors.KindOf
func (e *DecodeFailed) ErrorKind() apperrors.Kind {
	return apperrors.ErrDecode
}

var (
	_ apperrors.Classified = (*RequestFailed)(nil)
	_ apperrors.Classified = (*DecodeFailed)(nil)
)
