// Package apperr holds the error taxonomy shared by the services and the HTTP boundary.
package apperr

import (
	"errors"
	"net/http"
)

// ErrStoreConflict is returned by a store when a uniqueness constraint rejects a save.
var ErrStoreConflict = errors.New("email already registered")

// ValidationError is a defect in user input found before persistence.
type ValidationError struct{ Reason string }

func (e *ValidationError) Error() string { return e.Reason }

// AuthenticationError is a credential mismatch at login. Reason never says which field was wrong.
type AuthenticationError struct{ Reason string }

func (e *AuthenticationError) Error() string { return e.Reason }

// LookupError means an identity expected in the request context was not found.
type LookupError struct{ Reason string }

func (e *LookupError) Error() string { return e.Reason }

func Validation(reason string) error     { return &ValidationError{Reason: reason} }
func Authentication(reason string) error { return &AuthenticationError{Reason: reason} }
func Lookup(reason string) error         { return &LookupError{Reason: reason} }

// HTTPStatus maps err onto the status code the boundary answers with.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ae *AuthenticationError
		le *LookupError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreConflict):
		return http.StatusConflict
	case errors.As(err, &ae), errors.As(err, &le):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether err carries a message that is safe to show the caller.
func Public(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}

// Message is the caller-facing text for err, without any wrapping context.
// Unclassified errors collapse to "internal error".
func Message(err error) string {
	var (
		ve *ValidationError
		ae *AuthenticationError
		le *LookupError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Reason
	case errors.As(err, &ae):
		return ae.Reason
	case errors.As(err, &le):
		return le.Reason
	case errors.Is(err, ErrStoreConflict):
		return ErrStoreConflict.Error()
	default:
		return "internal error"
	}
}

// NotAuthenticatedAs is the lookup failure for a caller not signed in as role.
func NotAuthenticatedAs(role string) error {
	return Lookup("not authenticated as " + role)
}
