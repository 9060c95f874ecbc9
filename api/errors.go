package api

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrNoRefreshToken is returned by the refresh protocol when the session
// store holds no refresh token; no network call is made in that case.
var ErrNoRefreshToken = errors.New("no refresh token available")

// Error is a non-2xx backend response. Body is kept verbatim so callers can
// surface field-level validation messages; the client adds no interpretation
// of its own.
type Error struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

func (e *Error) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, string(e.Body))
}

// IsUnauthorized reports whether err is a 401 backend response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// StatusCode returns the HTTP status of a backend response error, or 0 if
// err is not an *Error (network failures, decode failures).
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
