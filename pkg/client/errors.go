package client

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned by authenticated calls made without a session.
var ErrNoSession = errors.New("no active session found")

// ErrSubmitInFlight is returned when a booking form is submitted while an earlier
// submission has not finished.
var ErrSubmitInFlight = errors.New("submission already in progress")

// ValidationError reports input the server or the form refused. Fields maps the
// offending field to its message.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

// AuthError reports a missing, expired or refused session.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// BackendError carries the server's message verbatim.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return e.Message
}

// UnexpectedError wraps transport and decoding failures. Its message is generic; the
// cause stays available through Unwrap.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return "Something went wrong. Please try again."
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// Message turns any error returned by this package into text fit for a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		validation *ValidationError
		auth       *AuthError
		backend    *BackendError
		unexpected *UnexpectedError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Error()
	case errors.As(err, &auth):
		return auth.Message
	case errors.As(err, &backend):
		return backend.Message
	case errors.As(err, &unexpected):
		return unexpected.Error()
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrSubmitInFlight):
		return err.Error()
	default:
		return (&UnexpectedError{Err: err}).Error()
	}
}
