package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is matched by every ConfigurationError through errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ErrCellNotFound is returned when a cell ID is not part of the population.
var ErrCellNotFound = errors.New("cell not found")

// ErrSnapshotNotFound is returned when a store holds no snapshot for a cell.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrUnknownOperation is wrapped when a schedule names an operation with no handler.
var ErrUnknownOperation = errors.New("unknown operation")

// ConfigurationError is a fatal structural problem found while loading or validating.
// It is never produced mid-run.
type ConfigurationError struct {
	Component string // e.g. "network", "scheduler", "environment"
	Subject   string // offending node, operation or key
	Reason    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Component)
	if e.Subject != "" {
		fmt.Fprintf(&sb, " %q", e.Subject)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConfiguration) match any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ConfigurationErrors collects every problem found by one validation pass.
type ConfigurationErrors struct {
	Errors []*ConfigurationError
}

func (e *ConfigurationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d configuration errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *ConfigurationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add records a problem.
func (e *ConfigurationErrors) Add(component, subject, reason string, cause error) {
	e.Errors = append(e.Errors, &ConfigurationError{
		Component: component,
		Subject:   subject,
		Reason:    reason,
		Err:       cause,
	})
}

// Err returns nil when nothing was recorded, the single error when one was, or e.
func (e *ConfigurationErrors) Err() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	}
	return e
}
