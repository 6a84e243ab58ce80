package core

import (
	"errors"
	"fmt"
)

// BackendError is returned when a request against the backend fails
// (timeout, connectivity, rejected statement).
type BackendError struct {
	Op      string
	Request string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Request == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, abbreviate(e.Request, 80), e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// NotFoundError is returned by lookups that require the object to exist.
type NotFoundError struct {
	Kind      Kind
	Name      string
	Container string
}

func (e *NotFoundError) Error() string {
	if e.Container == "" {
		return fmt.Sprintf("%s %q not found", kindLabel(e.Kind), e.Name)
	}
	return fmt.Sprintf("%s %q not found in %s", kindLabel(e.Kind), e.Name, e.Container)
}

// MalformedRowError describes a single row that could not be mapped to an
// object during cache population. Such rows are skipped.
type MalformedRowError struct {
	Cache string
	Key   string
	Err   error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row in %s cache (key %q): %v", e.Cache, e.Key, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsBackend reports whether err wraps a BackendError.
func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

func kindLabel(k Kind) string {
	if k == "" {
		return "object"
	}
	return string(k)
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
