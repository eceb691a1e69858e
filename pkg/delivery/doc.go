// Package delivery is the notification orchestrator.
//
// Manager.Send takes a domain event for one user and:
//
//  1. checks the user exists (notification.ErrNotFound otherwise);
//  2. renders the type's template into a PENDING notification;
//  3. unless forced, drops the event when the same user got the same type
//     about the same entities within the dedup window;
//  4. resolves channels with ResolveChannels;
//  5. per channel, stores a record, delivers it and stores the outcome.
//
// Channel failures are reported in SendResult.Errors and never abort other
// channels. EMAIL goes through an email.Sender, SISTEMA is delivered once
// stored, SMS always fails with ErrChannelNotImplemented.
//
// Background work is ProcessPending (deliver every PENDING record in paced
// batches) and RetryFailed (re-attempt ERROR records after an exponential
// backoff, up to notification.MaxAttempts). Sweeper runs both on an interval
// and, given a Locker, only in the process holding the lease.
//
// Delivery is at-least-once: a crash between sending and saving the outcome
// leaves the record PENDING and it is sent again by the next sweep.
package delivery
