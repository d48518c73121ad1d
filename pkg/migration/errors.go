package migration

import (
	"fmt"
	"strings"
)

// Error is a generic migration planning or execution failure.
type Error struct {
	PathID string
	StepID string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("migration %s step %s: %s", e.PathID, e.StepID, e.Reason)
	}
	return fmt.Sprintf("migration %s: %s", e.PathID, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError reports a step whose validation rules failed before or
// after applying its operation.
type ValidationError struct {
	StepID string
	Rule   string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %s failed validation rule %q: %v", e.StepID, e.Rule, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// RollbackError reports a rollback that could not complete. It is always
// fatal: it names every step that could not be undone and is surfaced
// verbatim to the caller, never swallowed.
type RollbackError struct {
	PathID      string
	FailedSteps []string
	Err         error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback of migration %s failed; steps not undone: %s: %v",
		e.PathID, strings.Join(e.FailedSteps, ", "), e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }
