package confluence

import (
	"fmt"
	"net/http"
)

// APIError is returned for any failed call to Confluence: transport failures as well as non-2xx
// responses.  StatusCode is zero when no response was received.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("confluence: %s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("confluence: %s %s: %s: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("confluence: %s %s: %s", e.Method, e.Path, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NotFound reports whether Confluence answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func statusMessage(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "authentication failed"
	case http.StatusForbidden:
		return "not permitted"
	case http.StatusNotFound:
		return "not found"
	case http.StatusServiceUnavailable:
		return "service is not available"
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "rate limited"
	}
	return "unknown HTTP response status"
}
