package interfaces

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// ValidatePort checks if the port number is valid.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{
			Field:   "port",
			Message: fmt.Sprintf("invalid port %d (must be 1-65535)", port),
		}
	}
	return nil
}

// ValidateTimeout checks that a probe timeout is positive.
func ValidateTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return &ValidationError{
			Field:   "timeout",
			Message: fmt.Sprintf("invalid timeout %s (must be positive)", timeout),
		}
	}
	return nil
}

// ValidateFile checks if a file exists and is readable.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ValidationError{
				Field:   "file",
				Message: fmt.Sprintf("file does not exist: %s", path),
			}
		}
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("cannot access file: %s", err),
		}
	}
	if info.IsDir() {
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("path is a directory, not a file: %s", path),
		}
	}
	return nil
}

// ValidateWorkers checks if the number of workers is valid.
func ValidateWorkers(workers int) error {
	if workers < 1 {
		return &ValidationError{
			Field:   "workers",
			Message: fmt.Sprintf("invalid workers count %d (must be >= 1)", workers),
		}
	}
	if workers > 512 {
		return &ValidationError{
			Field:   "workers",
			Message: fmt.Sprintf("workers count %d is too high (max 512)", workers),
		}
	}
	return nil
}

// ValidateTarget checks that a target host is present and has no whitespace.
func ValidateTarget(target string) error {
	if target == "" {
		return &ValidationError{
			Field:   "target",
			Message: "target cannot be empty",
		}
	}
	if strings.ContainsAny(target, " \t\r\n") {
		return &ValidationError{
			Field:   "target",
			Message: fmt.Sprintf("target %q contains whitespace", target),
		}
	}
	return nil
}
