package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoResponse wraps every failure where the server never answered.
var ErrNoResponse = errors.New("no response from server")

// HTTPError is a non-2xx response, with the server's message when it sent one.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d", e.Status)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// Message returns the server-supplied message carried by err, or fallback.
func Message(err error, fallback string) string {
	var herr *HTTPError
	if errors.As(err, &herr) && herr.Message != "" {
		return herr.Message
	}
	return fallback
}

// Describe turns err into the single user-facing line the console shows for
// a failed API call.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoResponse) {
		return "No response from server. Please check your internet connection."
	}
	var herr *HTTPError
	if !errors.As(err, &herr) {
		return "An error occurred. Please try again."
	}
	switch herr.Status {
	case http.StatusUnauthorized:
		return "Your session has expired. Please log in again."
	case http.StatusForbidden:
		return "You do not have permission to perform this action"
	case http.StatusNotFound:
		return "The requested resource was not found"
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	}
	if herr.Message != "" {
		return herr.Message
	}
	return "An error occurred. Please try again."
}

// ConsoleStatus picks the status the console answers with when an upstream
// call failed: upstream 4xx pass through, everything else is a bad gateway.
func ConsoleStatus(err error) int {
	status := StatusCode(err)
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
