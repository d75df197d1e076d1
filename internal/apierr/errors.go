// Package apierr defines the error taxonomy for backend API calls.
//
// Four classes matter to callers: bad credentials at login (recovered
// inline), an expired session (recovered by forced logout), a role
// rejection (recovered by redirecting to a safe view), and everything
// else (surfaced as-is, retried only on explicit user action).
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned by login with a wrong
	// username/password pair. The session stays untouched.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionExpired wraps a 401 on any authenticated call. By the
	// time a caller sees it the credential store has been cleared.
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden wraps a 403: authenticated but the role does not
	// permit the action.
	ErrForbidden = errors.New("access denied")
)

// APIError carries the HTTP status and the backend's detail message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// New creates an APIError for the given status and message.
func New(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

// StatusCode extracts the HTTP status from an error chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err stems from an HTTP 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrInvalidCredentials) ||
		StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden reports whether err stems from an HTTP 403.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || StatusCode(err) == http.StatusForbidden
}

// IsNotFound reports whether err stems from an HTTP 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
