package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/facturia/facturia/internal/storage"
)

// Standard error codes for API responses.
const (
	// ErrCodeValidation indicates a malformed request body or field.
	ErrCodeValidation = "validation_error"

	// ErrCodeInvalidCredentials indicates a missing or invalid session,
	// or a failed login.
	ErrCodeInvalidCredentials = "invalid_credentials"

	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeTokenInvalid indicates an unknown report token.
	ErrCodeTokenInvalid = "token_invalid"

	// ErrCodeTokenExpired indicates a report token past its expiry.
	ErrCodeTokenExpired = "token_expired"

	// ErrCodeConflict indicates a delete blocked by dependent rows.
	ErrCodeConflict = "conflict"

	// ErrCodeDuplicate indicates a uniqueness violation.
	ErrCodeDuplicate = "duplicate"

	// ErrCodeInternalError indicates a server error.
	ErrCodeInternalError = "internal_error"
)

// APIError is the standard error response format for JSON APIs.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// WriteError writes a JSON error response with the given status code, error code, and message.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorWithHint(w, status, code, message, "")
}

// WriteErrorWithHint writes a JSON error response with an optional hint for resolving the error.
func WriteErrorWithHint(w http.ResponseWriter, status int, code, message, hint string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := APIError{
		Error:   code,
		Message: message,
		Hint:    hint,
	}
	// Encoding errors are not critical since headers are already sent
	encErr := json.NewEncoder(w).Encode(resp)
	if encErr != nil {
		_ = encErr
	}
}

// writeStorageError maps storage sentinel errors onto the HTTP taxonomy.
// notFoundMsg names the missing resource; conflictMsg explains the guard.
func (h *Handler) writeStorageError(w http.ResponseWriter, err error, notFoundMsg, conflictMsg string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, storage.ErrConflict):
		WriteError(w, http.StatusConflict, ErrCodeConflict, conflictMsg)
	case errors.Is(err, storage.ErrDuplicate):
		WriteError(w, http.StatusConflict, ErrCodeDuplicate, "A record with this value already exists")
	default:
		h.logger.Error("storage operation failed", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
	}
}

// writeJSON writes a JSON success response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encErr := json.NewEncoder(w).Encode(v)
	if encErr != nil {
		_ = encErr
	}
}
