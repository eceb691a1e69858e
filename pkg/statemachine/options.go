package statemachine

import (
	"fmt"
)

// Option configures a Table during construction.
type Option func(*Table) error

// TransitionOption attaches guards and actions to a transition.
type TransitionOption func(*Transition)

// WithTransition adds a single edge.
func WithTransition(from, to State, event Event, opts ...TransitionOption) Option {
	return func(t *Table) error {
		tr := Transition{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&tr)
		}
		return t.add(tr)
	}
}

// WithTransitionFrom adds the same edge from several source states.
func WithTransitionFrom(froms []State, to State, event Event, opts ...TransitionOption) Option {
	return func(t *Table) error {
		for i, from := range froms {
			if err := WithTransition(from, to, event, opts...)(t); err != nil {
				return fmt.Errorf("failed to add transition[%d] on %s: %w", i, nameOf(event), err)
			}
		}
		return nil
	}
}

// WithGuard adds a guard; nil guards are ignored.
func WithGuard(guard Guard) TransitionOption {
	return func(tr *Transition) {
		if guard != nil {
			tr.Guards = append(tr.Guards, guard)
		}
	}
}

// WithAction adds an action; nil actions are ignored.
func WithAction(action Action) TransitionOption {
	return func(tr *Transition) {
		if action != nil {
			tr.Actions = append(tr.Actions, action)
		}
	}
}

func nameOf(v interface{ Name() string }) string {
	if v == nil {
		return "<nil>"
	}
	return v.Name()
}
