package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches, via errors.Is, every error derived from a 401:
// a rejected request, an expired session or a missing session.
var ErrUnauthorized = errors.New("unauthorized")

const fallbackMessage = "Request failed"

// TransportError is a failure without a usable HTTP response: connection
// refused, timeout, cancelled context, unreadable body.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Message == "" {
		return fallbackMessage
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError is a non-2xx response. Message is the backend's envelope
// message when it sent one.
type ApplicationError struct {
	StatusCode int
	Message    string
	// Envelope is the decoded error body, nil when the body was not a JSON
	// envelope.
	Envelope *Envelope
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fallbackMessage
	}
	return e.Message
}

func (e *ApplicationError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// SessionExpiredError is returned to every request that waited on a refresh
// the backend rejected because the refresh credential is no longer valid.
// The session has been cleared by the time callers see it.
type SessionExpiredError struct {
	Cause error
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: %v", e.Cause)
}

func (e *SessionExpiredError) Unwrap() error {
	return e.Cause
}

func (e *SessionExpiredError) Is(target error) bool {
	return target == ErrUnauthorized
}

// NoSessionError is returned when a refresh was attempted without any
// refresh credential, typically by an anonymous visitor. The session and
// the current page are left alone.
type NoSessionError struct {
	Cause error
}

func (e *NoSessionError) Error() string {
	return fmt.Sprintf("no session: %v", e.Cause)
}

func (e *NoSessionError) Unwrap() error {
	return e.Cause
}

func (e *NoSessionError) Is(target error) bool {
	return target == ErrUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from an HTTP response.
func StatusCode(err error) int {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}

// Message returns the user-facing message of err: the backend message, the
// transport message, or "Request failed".
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}
