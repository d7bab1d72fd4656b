package session

import (
	"errors"
	"net/http"

	"github.com/creditor/creditor_console/internal/apiclient"
)

var (
	// ErrDisposed is returned by operations on a manager after Dispose.
	ErrDisposed = errors.New("session manager disposed")
	// ErrNotAuthenticated is returned when an operation needs a live session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrMissingPhone is the precondition failure for phone based operations.
	ErrMissingPhone = errors.New("phone number is required")
)

// Kind classifies a session failure.
type Kind string

const (
	KindTransport    Kind = "transport"
	KindHTTP         Kind = "http"
	KindRejected     Kind = "rejected"
	KindPrecondition Kind = "precondition"
	KindStorage      Kind = "storage"
)

// Error is the uniform failure returned by every Manager operation. Message
// is safe to show to the person using the console.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind != KindRejected {
		return e.Op + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus suggests the status a console handler should answer with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindPrecondition:
		return http.StatusBadRequest
	case KindTransport:
		return http.StatusBadGateway
	case KindStorage:
		return http.StatusInternalServerError
	case KindHTTP:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusUnauthorized
	}
}

// Message extracts the user facing message from err, or fallback.
func Message(err error, fallback string) string {
	var serr *Error
	if errors.As(err, &serr) && serr.Message != "" {
		return serr.Message
	}
	return fallback
}

func remoteError(op string, err error, fallback string) *Error {
	kind := KindTransport
	status := apiclient.StatusCode(err)
	if status != 0 {
		kind = KindHTTP
	}
	return &Error{Op: op, Kind: kind, Status: status, Message: apiclient.Message(err, fallback), Err: err}
}

func rejectedError(op, message, fallback string) *Error {
	if message == "" {
		message = fallback
	}
	return &Error{Op: op, Kind: KindRejected, Message: message}
}

func preconditionError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindPrecondition, Message: err.Error(), Err: err}
}
