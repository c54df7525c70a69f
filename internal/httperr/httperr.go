package httperr

import (
	"errors"
	"net/http"
)

// Error is a domain error that carries the HTTP status it should surface
// with. Services return these; the API boundary maps everything else to 500.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// NotFound covers both absent resources and ownership failures. Ownership
// is deliberately reported as 404 to avoid leaking resource existence.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Invalid(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Conflict signals a guarded mutation, e.g. deleting a non-empty category
// or registering an email twice.
func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// StatusOf extracts the HTTP status from err, defaulting to 500.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
