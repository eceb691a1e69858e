package statemachine

import (
	"context"
)

// State is anything with a stable name.
type State interface {
	Name() string
}

// Event is anything with a stable name.
type Event interface {
	Name() string
}

// Action runs side effects while a transition is resolved. Returning an error
// rejects the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard decides at runtime whether a transition may proceed.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition is one edge of the table.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard  // all must pass
	Actions []Action // executed in order once guards pass
}

// StringState is a plain string state.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

// StringEvent is a plain string event.
type StringEvent string

func (e StringEvent) Name() string {
	return string(e)
}
