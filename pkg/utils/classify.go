package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// FromDialError converts a failure from a network operation into a
// ConnectionError. The message describes what went wrong in terms of addr and
// the original error is kept as the cause. An error that already is a
// ConnectionError is returned unchanged. Callers must pass a non-nil err.
func FromDialError(op, addr string, err error) *ConnectionError {
	if connErr, ok := AsConnectionError(err); ok {
		return connErr
	}

	var dnsErr *net.DNSError
	switch {
	case IsTimeout(err):
		return NewConnectionErrorWithCause(fmt.Sprintf("timed out connecting to %s", addr), err)
	case errors.Is(err, context.Canceled):
		return NewConnectionErrorWithCause(fmt.Sprintf("connection to %s cancelled", addr), err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return NewConnectionErrorWithCause(fmt.Sprintf("connection refused by %s", addr), err)
	case errors.Is(err, syscall.ECONNRESET):
		return NewConnectionErrorWithCause(fmt.Sprintf("connection reset by %s", addr), err)
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return NewConnectionErrorWithCause(fmt.Sprintf("%s is unreachable", addr), err)
	case errors.As(err, &dnsErr):
		return NewConnectionErrorWithCause(fmt.Sprintf("cannot resolve %s", dnsErr.Name), err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return NewConnectionErrorWithCause(fmt.Sprintf("connection to %s closed by peer", addr), err)
	}

	if op == "" {
		return WrapConnectionError(err)
	}
	return NewConnectionErrorWithCause(fmt.Sprintf("%s %s failed", op, addr), err)
}

// IsTimeout reports whether err, or anything it wraps, is a timeout
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
