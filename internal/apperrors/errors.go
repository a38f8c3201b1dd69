// Package apperrors defines the error taxonomy shared by services and
// HTTP handlers. Sentinels classify outcomes; handlers map them to
// status codes with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: meeting or participant absent, or hidden by soft delete.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied: caller is not the host of the meeting.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidState: the requested transition is not defined from the
	// entity's current state (e.g. admission actions on an ended meeting).
	ErrInvalidState = errors.New("invalid state")

	// ErrUnauthorized: no valid caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDependency: the storage collaborator failed or timed out. Fatal
	// to the call; the state transition did not happen.
	ErrDependency = errors.New("dependency failure")
)

// DependencyError wraps a fatal storage-layer failure with the component
// that produced it. Matches ErrDependency under errors.Is.
type DependencyError struct {
	Component string
	Err       error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func (e *DependencyError) Is(target error) bool { return target == ErrDependency }

// Dependency wraps err as a fatal dependency failure. Returns nil if
// err is nil.
func Dependency(component string, err error) error {
	if err == nil {
		return nil
	}
	return &DependencyError{Component: component, Err: err}
}
