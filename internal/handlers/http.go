package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/contesttracker/tracker/internal/errors"
)

// Error codes for standardized API error responses
const (
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeUpstream       = "UPSTREAM_ERROR"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondError writes an error response
func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	var apiErr *APIError
	if !stderrors.As(err, &apiErr) {
		apiErr = h.ToAPIError(err)
	}
	respondJSON(w, apiErr.Status, apiErr)
}

// ToAPIError converts application errors to API errors. Internal causes are
// logged and never sent to the browser.
func (h *Handlers) ToAPIError(err error) *APIError {
	msg := errors.MessageOf(err, "")
	switch errors.KindOf(err) {
	case errors.ErrNotFound:
		return NotFound(msg)
	case errors.ErrValidation, errors.ErrInvalidInput:
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: msg}
	case errors.ErrConflict:
		return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: msg}
	case errors.ErrUnauthorized:
		return Unauthorized(msg)
	case errors.ErrNetwork, errors.ErrDecode:
		h.Log.Error("Upstream API error", "error", err)
		return &APIError{Status: http.StatusBadGateway, Code: ErrCodeUpstream, Message: "Contest API unavailable"}
	default:
		h.Log.Error("Internal error", "error", err)
		return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
	}
}
