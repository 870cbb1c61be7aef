// Package apperr defines the error taxonomy shared by the service and
// repository layers and its mapping to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError marks malformed input (empty text, unknown kind,
// missing recipient). Never retried automatically.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, v ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, v...)}
}

// PermissionError marks an operation attempted by a non-owner. The
// operation is a no-op server-side, never partially applied.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }

// Permissionf builds a PermissionError.
func Permissionf(format string, v ...any) error {
	return &PermissionError{Msg: fmt.Sprintf(format, v...)}
}

// Status maps an error to the HTTP status the boundary should answer
// with. Anything outside the taxonomy is a store failure (500).
func Status(err error) int {
	var ve *ValidationError
	var pe *PermissionError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &pe):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsClientFault reports whether the error should not be logged as a
// server-side failure.
func IsClientFault(err error) bool {
	return Status(err) < http.StatusInternalServerError
}
