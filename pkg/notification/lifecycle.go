package notification

import (
	"context"
	"time"

	"github.com/riskhub/notify/pkg/statemachine"
)

const (
	eventSend  = statemachine.StringEvent("mark sent")
	eventRead  = statemachine.StringEvent("mark read")
	eventFail  = statemachine.StringEvent("mark error")
	eventRetry = statemachine.StringEvent("retry")
)

// PENDING -> SENT -> READ; anything but READ may fail into ERROR; ERROR goes
// back to PENDING while the retry budget lasts.
var lifecycle = statemachine.MustNewTable(
	statemachine.WithTransition(StatePending, StateSent, eventSend),
	statemachine.WithTransitionFrom([]statemachine.State{StatePending, StateSent}, StateRead, eventRead),
	statemachine.WithTransitionFrom([]statemachine.State{StatePending, StateSent, StateError}, StateError, eventFail),
	statemachine.WithTransition(StateError, StatePending, eventRetry, statemachine.WithGuard(retryAllowed)),
)

func retryAllowed(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	n, ok := data.(Notification)
	return ok && n.CanRetry()
}

func (n Notification) next(event statemachine.StringEvent) (State, error) {
	to, err := lifecycle.Next(context.Background(), n.State, event, n)
	if err != nil {
		return "", &InvalidStateError{From: n.State, Event: event.Name(), Err: err}
	}
	return to.(State), nil
}

// MarkSent moves a PENDING record to SENT and stamps the send time.
func (n Notification) MarkSent(at time.Time) (Notification, error) {
	to, err := n.next(eventSend)
	if err != nil {
		return n, err
	}

	out := n.clone()
	out.State = to
	out.SentAt = &at
	out.LastAttemptAt = &at
	return out, nil
}

// MarkRead moves a PENDING or SENT record to READ and stamps the read time.
func (n Notification) MarkRead(at time.Time) (Notification, error) {
	to, err := n.next(eventRead)
	if err != nil {
		return n, err
	}

	out := n.clone()
	out.State = to
	out.ReadAt = &at
	return out, nil
}

// MarkError records a failed attempt: state becomes ERROR, the attempt
// counter grows by one and reason is kept as the last error.
func (n Notification) MarkError(reason string, at time.Time) (Notification, error) {
	to, err := n.next(eventFail)
	if err != nil {
		return n, err
	}

	out := n.clone()
	out.State = to
	out.Attempts++
	out.LastError = &reason
	out.LastAttemptAt = &at
	return out, nil
}

// CanRetry is true while the retry budget lasts and the record has not been
// delivered.
func (n Notification) CanRetry() bool {
	return n.Attempts < MaxAttempts && n.State != StateSent && n.State != StateRead
}

// Retry moves an ERROR record back to PENDING and clears the last error.
// It fails with an *InvalidStateError when CanRetry is false or the record is
// not in ERROR.
func (n Notification) Retry() (Notification, error) {
	to, err := n.next(eventRetry)
	if err != nil {
		return n, err
	}

	out := n.clone()
	out.State = to
	out.LastError = nil
	return out, nil
}

// ExpiredReason is the error recorded on notifications that expired before
// they could be delivered.
const ExpiredReason = "expired before delivery"

// Expire moves an undelivered record to ERROR and exhausts its retry budget,
// so stale content is never sent.
func (n Notification) Expire(at time.Time) (Notification, error) {
	out, err := n.MarkError(ExpiredReason, at)
	if err != nil {
		return n, err
	}
	out.Attempts = max(out.Attempts, MaxAttempts)
	return out, nil
}
