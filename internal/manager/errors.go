package manager

import (
	"errors"
	"fmt"
)

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ modelID string }

func (e tooBusyError) Error() string { return "too busy: " + e.modelID }

// ErrTooBusy returns the backpressure error for modelID.
func ErrTooBusy(modelID string) error { return tooBusyError{modelID: modelID} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// modelNotFoundError is returned when a named model is absent or no model
// serves the requested domain.
type modelNotFoundError struct {
	name   string
	domain string
}

func (e modelNotFoundError) Error() string {
	if e.name != "" {
		return "model not found: " + e.name
	}
	return "no model for domain: " + e.domain
}

// ErrModelNotFound returns an error for a model name missing from the registry.
func ErrModelNotFound(name string) error { return modelNotFoundError{name: name} }

// ErrNoModelForDomain returns an error for a domain no model serves.
func ErrNoModelForDomain(domain string) error { return modelNotFoundError{domain: domain} }

// IsModelNotFound reports whether the error indicates a missing model.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// invalidRequestError marks a request the caller must fix (400).
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return e.msg }

// ErrInvalidRequest wraps msg as a request validation failure.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

func errInvalid(format string, args ...any) error {
	return invalidRequestError{msg: fmt.Sprintf(format, args...)}
}

// IsInvalidRequest reports whether err is a request validation failure.
func IsInvalidRequest(err error) bool {
	var e invalidRequestError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals the service cannot score right now
// (shutting down, nothing loaded) so the HTTP layer can return 503.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates the service is unavailable.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}
