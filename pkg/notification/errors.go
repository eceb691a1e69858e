package notification

import (
	"errors"
	"fmt"
)

// Error kinds shared by the engine. Compare with errors.Is.
var (
	// ErrValidation wraps validator.ValidationErrors for malformed input.
	ErrValidation = errors.New("notification: validation failed")
	// ErrNotFound is returned for unknown notification ids and unknown users.
	ErrNotFound = errors.New("notification: not found")
	// ErrInvalidState is matched by *InvalidStateError.
	ErrInvalidState = errors.New("notification: invalid state transition")
	// ErrDelivery marks a failed or impossible transport call.
	ErrDelivery = errors.New("notification: delivery failed")
	// ErrDependency marks a storage or transport call that itself failed.
	ErrDependency = errors.New("notification: dependency failed")
)

// InvalidStateError reports a lifecycle transition that is not allowed from
// the record's current state.
type InvalidStateError struct {
	From  State
	Event string
	Err   error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("notification: cannot %s from state %s", e.Event, e.From)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

func (e *InvalidStateError) Unwrap() error {
	return e.Err
}
