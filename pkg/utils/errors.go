package utils

import (
	"errors"
)

// fallbackMessage is reported when neither a message nor a cause was supplied
const fallbackMessage = "connection error"

// ConnectionError represents a failure while establishing or maintaining a
// connection. It carries an optional message and an optional underlying cause
// and is never modified after construction.
type ConnectionError struct {
	message string
	cause   error
}

// NewConnectionError creates a connection error with the given message and no cause
func NewConnectionError(msg string) *ConnectionError {
	return &ConnectionError{message: msg}
}

// WrapConnectionError creates a connection error whose description is taken
// from the underlying cause
func WrapConnectionError(cause error) *ConnectionError {
	return &ConnectionError{cause: cause}
}

// NewConnectionErrorWithCause creates a connection error with the given
// message, chaining cause beneath it. An empty msg is treated as absent, so
// Error falls back to the cause's description rather than returning "".
func NewConnectionErrorWithCause(msg string, cause error) *ConnectionError {
	return &ConnectionError{message: msg, cause: cause}
}

// Error returns the explicit message if one was given, otherwise the cause's description.
func (e *ConnectionError) Error() string {
	if e.message != "" {
		return e.message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return fallbackMessage
}

// Message returns the explicit message, which is empty when the error was
// built from a cause alone.
func (e *ConnectionError) Message() string {
	return e.message
}

// Cause returns the underlying cause, or nil.
func (e *ConnectionError) Cause() error {
	return e.cause
}

func (e *ConnectionError) Unwrap() error {
	return e.cause
}

// IsConnectionError reports whether err or anything it wraps is a ConnectionError
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// AsConnectionError returns the first ConnectionError in err's chain
func AsConnectionError(err error) (*ConnectionError, bool) {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return connErr, true
	}
	return nil, false
}
