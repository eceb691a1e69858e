// Package statemachine provides an immutable finite-state transition table.
//
// Unlike a classic state machine object, a Table does not track a current
// state. Callers hand in the state stored on their record together with an
// event, and Next returns the state to persist. Guards can veto a transition
// based on runtime data and actions run once a transition is chosen.
//
//	const (
//	    Draft    = statemachine.StringState("draft")
//	    InReview = statemachine.StringState("in_review")
//	    Submit   = statemachine.StringEvent("submit")
//	)
//
//	table := statemachine.MustNewTable(
//	    statemachine.WithTransition(Draft, InReview, Submit),
//	)
//
//	next, err := table.Next(ctx, Draft, Submit, nil)
//
// Errors distinguish a missing edge (IsNoTransitionAvailableError) from an
// edge blocked by guards (IsTransitionRejectedError).
package statemachine
