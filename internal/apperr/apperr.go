// Package apperr defines the error kinds surfaced by the HTTP API and their
// mapping onto status codes.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation reports a missing or malformed request field.
	ErrValidation = errors.New("validation failed")

	// ErrConflict reports a duplicate email or username at registration.
	ErrConflict = errors.New("user already exists")

	// ErrInvalidCredentials is returned for any login failure. It never tells
	// the caller whether the account exists.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrStoreUnavailable reports an infrastructure failure of the credential store.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// ErrUnauthenticated is returned for a missing, malformed, expired or revoked token.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden reports an authenticated caller lacking the required role.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrNotFound reports a missing resource on a protected lookup.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited reports too many login attempts.
	ErrRateLimited = errors.New("too many login attempts, try again later")
)

// Error pairs a kind sentinel with a message safe to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// Validation builds a validation error with a field-specific message.
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

type kindInfo struct {
	err    error
	code   string
	status int
}

var kinds = []kindInfo{
	{ErrValidation, "validation_error", http.StatusBadRequest},
	{ErrConflict, "conflict", http.StatusConflict},
	{ErrInvalidCredentials, "invalid_credentials", http.StatusUnauthorized},
	{ErrUnauthenticated, "unauthenticated", http.StatusUnauthorized},
	{ErrForbidden, "forbidden", http.StatusForbidden},
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrRateLimited, "rate_limited", http.StatusTooManyRequests},
	{ErrStoreUnavailable, "store_unavailable", http.StatusServiceUnavailable},
}

// Classify returns the machine-readable kind, HTTP status and public message
// for err. Unknown errors classify as an internal error with a generic message.
func Classify(err error) (code string, status int, message string) {
	for _, k := range kinds {
		if !errors.Is(err, k.err) {
			continue
		}
		message = k.err.Error()
		var ae *Error
		if errors.As(err, &ae) && ae.Message != "" && errors.Is(ae.Kind, k.err) {
			message = ae.Message
		}
		return k.code, k.status, message
	}
	return "internal", http.StatusInternalServerError, "something went wrong"
}
