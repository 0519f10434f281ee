package cluster

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the kind of a ValidationError raised for malformed
	// input values.
	ErrValidation = errors.New("cluster: invalid input")

	// ErrConfiguration is the kind of a ValidationError raised for
	// configuration tables whose shape or combination is inconsistent.
	ErrConfiguration = errors.New("cluster: inconsistent configuration")

	// ErrSolverFailure is matched by every RestartError.
	ErrSolverFailure = errors.New("cluster: restart failed")

	// ErrNoFeasibleRestart is returned when every restart failed.
	ErrNoFeasibleRestart = errors.New("cluster: no restart produced a clustering")

	errNilResult          = errors.New("cluster: solver returned no result")
	errNonFiniteObjective = errors.New("cluster: solver returned a non-finite objective")
)

// ValidationError reports the first violated input constraint.
// errors.Is matches it against its Kind (ErrValidation or ErrConfiguration).
type ValidationError struct {
	Field  string
	Reason string
	Kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", e.kind(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.kind() }

func (e *ValidationError) kind() error {
	if e.Kind == nil {
		return ErrValidation
	}

	return e.Kind
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Kind: ErrValidation}
}

func misconfigured(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Kind: ErrConfiguration}
}

// RestartError wraps the solver error of one restart (1-based index).
type RestartError struct {
	Restart int
	Err     error
}

func (e *RestartError) Error() string {
	return fmt.Sprintf("cluster: restart %d: %v", e.Restart, e.Err)
}

// Unwrap exposes both ErrSolverFailure and the solver's own error.
func (e *RestartError) Unwrap() []error { return []error{ErrSolverFailure, e.Err} }
