package statemachine

import (
	"context"
	"fmt"
)

// Table is an immutable transition table. It holds no current state: callers
// pass the state they have and get back the state they should store. This
// fits records that are persisted after every transition.
//
// Lookups go through a nested map [from][event][]Transition. A Table is safe
// for concurrent use once built because nothing mutates it after NewTable.
type Table struct {
	transitions map[string]map[string][]Transition
}

// NewTable builds a table from options.
func NewTable(opts ...Option) (*Table, error) {
	t := &Table{transitions: make(map[string]map[string][]Transition)}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNewTable is NewTable that panics on invalid definitions. Tables are
// package-level configuration, so a bad one should stop the program at init.
func MustNewTable(opts ...Option) *Table {
	t, err := NewTable(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build transition table: %v", err))
	}
	return t
}

func (t *Table) add(tr Transition) error {
	if tr.From == nil || tr.To == nil || tr.Event == nil {
		return ErrInvalidTransition
	}

	from := tr.From.Name()
	if _, ok := t.transitions[from]; !ok {
		t.transitions[from] = make(map[string][]Transition)
	}

	// Several edges per from/event are allowed; the first whose guards pass wins.
	t.transitions[from][tr.Event.Name()] = append(t.transitions[from][tr.Event.Name()], tr)
	return nil
}

func (t *Table) match(ctx context.Context, from State, event Event, data any) (*Transition, error) {
	if from == nil || event == nil {
		return nil, ErrInvalidEvent
	}

	candidates := t.transitions[from.Name()][event.Name()]
	if len(candidates) == 0 {
		return nil, NewErrNoTransitionAvailable(from.Name(), event.Name())
	}

	for i, tr := range candidates {
		if guardsPass(ctx, tr.Guards, from, event, data) {
			return &candidates[i], nil
		}
	}

	return nil, NewErrTransitionRejected(from.Name(), event.Name())
}

// Next resolves event from state from and returns the target state. Actions of
// the chosen transition run before Next returns; an action error aborts it.
func (t *Table) Next(ctx context.Context, from State, event Event, data any) (State, error) {
	tr, err := t.match(ctx, from, event, data)
	if err != nil {
		return nil, err
	}

	for _, action := range tr.Actions {
		if err := action(ctx, from, tr.To, event, data); err != nil {
			return nil, fmt.Errorf("action failed: %w", err)
		}
	}

	return tr.To, nil
}

// Can reports whether Next would find a transition whose guards pass.
// Actions are not executed.
func (t *Table) Can(ctx context.Context, from State, event Event, data any) bool {
	_, err := t.match(ctx, from, event, data)
	return err == nil
}

func guardsPass(ctx context.Context, guards []Guard, from State, event Event, data any) bool {
	for _, g := range guards {
		if !g(ctx, from, event, data) {
			return false
		}
	}
	return true
}
