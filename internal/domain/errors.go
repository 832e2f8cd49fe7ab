package domain

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a booking's date range overlaps an existing
// booking for the same listing.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized is returned when the caller does not own the resource it
// tried to change. Zero affected rows on an owner-scoped delete is the signal.
// Handlers should map this to HTTP 403.
var ErrUnauthorized = errors.New("unauthorized")

// Message extracts the human-readable part of an error wrapping one of the
// sentinels above. "service.X: not found: Booking not found" → "Booking not found".
// Errors without a message after the sentinel return the sentinel text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrUnauthorized} {
		marker := sentinel.Error() + ": "
		if i := strings.Index(msg, marker); i >= 0 {
			return msg[i+len(marker):]
		}
	}
	return msg
}
