package application

import (
	"errors"
	"fmt"

	"orgstage/internal/domain"
)

// Sentinel errors for common conditions. Resolution sentinels are re-exported
// from domain so adapters and commands share one identity.
var (
	ErrHeadingNotFound  = domain.ErrHeadingNotFound
	ErrHeadingNotUnique = domain.ErrHeadingNotUnique
	ErrUnresolvedID     = domain.ErrUnresolvedID
	ErrUnknownAction    = errors.New("unknown action")
	ErrConflict         = errors.New("conflict")
)

// SetupError reports a missing or misconfigured location. It is fatal: the
// whole phase aborts before any mutation.
type SetupError struct {
	Path   string
	Reason string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup: %s: %s", e.Reason, e.Path)
}

// ConflictError is a stale old-value mismatch on a field edit. The message
// names both the expected and the actual value so the retained inbox entry is
// actionable by hand.
type ConflictError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s mismatch: expected %q, found %q", e.Field, e.Expected, e.Actual)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ExecutionError wraps a handler failure during request execution. The target
// node is left unmodified.
type ExecutionError struct {
	Action string
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("action %q failed", e.Action)
	}
	return fmt.Sprintf("action %q failed: %v", e.Action, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
