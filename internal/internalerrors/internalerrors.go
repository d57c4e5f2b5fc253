package internalerrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotExist      = fmt.Errorf("resource does not exist")
	ErrDriftDetected = fmt.Errorf("drifts detected")
	ErrTooManyPages  = fmt.Errorf("too many pages")
)

// HTTPError is returned when the Terraform API answers with a non successful status code.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("API error: %d", e.StatusCode)
	}

	return fmt.Sprintf("API error: %d - %s", e.StatusCode, body)
}

// CLIError is returned when the hcpt executable fails or its output can't be understood.
type CLIError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CLIError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}

	return fmt.Sprintf("hcpt command failed: %s", msg)
}

func (e *CLIError) Unwrap() error { return e.Err }

// CapabilityUnsupportedError is returned by a provider that can't execute an operation at all.
// It's a permanent condition, retrying on the same provider will always fail.
type CapabilityUnsupportedError struct {
	Operation string
	Provider  string
}

func (e *CapabilityUnsupportedError) Error() string {
	return fmt.Sprintf("%s is not supported by the %s provider, use the HTTP API provider for this operation (e.g --provider=http)", e.Operation, e.Provider)
}

// NotFoundError is returned when a named resource doesn't exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workspace not found: %s", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotExist }

// ConfigurationError is returned when the configuration requires something that is missing.
type ConfigurationError struct {
	MissingDependency string
	Reason            string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required dependency %q", e.MissingDependency)
	}

	return fmt.Sprintf("missing required dependency %q: %s", e.MissingDependency, e.Reason)
}

// IsCapabilityUnsupported returns true if the error chain contains a CapabilityUnsupportedError.
func IsCapabilityUnsupported(err error) bool {
	var cerr *CapabilityUnsupportedError
	return errors.As(err, &cerr)
}
