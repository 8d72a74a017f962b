package client

import (
	"fmt"
	"net/http"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
)

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

// Unwrap maps the status code onto the backend sentinel errors
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return backend.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return backend.ErrUnauthorized
	default:
		return nil
	}
}
