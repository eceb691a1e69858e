package delivery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/riskhub/notify/pkg/logger"
	"github.com/riskhub/notify/pkg/notification"
)

// BatchResult summarizes a ProcessPending run.
type BatchResult struct {
	Processed int
	Sent      int
	Failed    int
}

// RetryResult summarizes a RetryFailed run.
type RetryResult struct {
	Retried   int
	Succeeded int
	// PermanentlyFailed counts records that ran out of attempts or expired
	// during this run. They stay in ERROR.
	PermanentlyFailed int
	// Skipped counts records whose backoff has not elapsed yet.
	Skipped int
}

// ProcessPending delivers every PENDING notification with attempts left.
// Records are handled in batches of the configured size with a pause between
// batches. A failing record is marked ERROR and never stops the run; only a
// failing pending-list query or ctx cancellation returns an error.
func (m *Manager) ProcessPending(ctx context.Context) (BatchResult, error) {
	var res BatchResult
	started := m.now()

	pending, err := m.notifications.Pending(ctx)
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "failed to load pending notifications", logger.Error(err))
		return res, errors.Join(notification.ErrDependency, err)
	}

	err = m.inBatches(ctx, len(pending), func(i int) {
		res.Processed++
		if m.processOne(ctx, pending[i]) {
			res.Sent++
		} else {
			res.Failed++
		}
	})

	if res.Processed > 0 {
		m.logger.LogAttrs(ctx, slog.LevelInfo, "pending notifications processed",
			logger.Count("processed", res.Processed),
			logger.Count("sent", res.Sent),
			logger.Count("failed", res.Failed),
			logger.Duration(m.now().Sub(started)),
		)
	}
	return res, err
}

// processOne delivers one pending record and reports whether it was sent.
func (m *Manager) processOne(ctx context.Context, n notification.Notification) bool {
	now := m.now()
	if n.IsExpired(now) {
		m.expire(ctx, n, now)
		return false
	}

	user, err := m.lookupUser(ctx, n.UserID)
	if err != nil {
		_, _ = m.record(ctx, n, err)
		return false
	}

	_, err = m.deliverAndRecord(ctx, n, user)
	return err == nil
}

// RetryFailed re-attempts ERROR notifications that still have attempts left
// and whose backoff elapsed. Expired records are closed instead.
func (m *Manager) RetryFailed(ctx context.Context) (RetryResult, error) {
	var res RetryResult

	failed, err := m.notifications.Failed(ctx)
	if err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "failed to load failed notifications", logger.Error(err))
		return res, errors.Join(notification.ErrDependency, err)
	}

	err = m.inBatches(ctx, len(failed), func(i int) {
		n := failed[i]
		now := m.now()

		if !n.CanRetry() {
			return
		}
		if n.IsExpired(now) {
			m.expire(ctx, n, now)
			res.PermanentlyFailed++
			return
		}
		if !m.retryDue(n, now) {
			res.Skipped++
			return
		}

		retried, err := n.Retry()
		if err != nil {
			return
		}
		res.Retried++

		var updated notification.Notification
		user, err := m.lookupUser(ctx, retried.UserID)
		if err != nil {
			updated, err = m.record(ctx, retried, err)
		} else {
			updated, err = m.deliverAndRecord(ctx, retried, user)
		}

		switch {
		case err == nil:
			res.Succeeded++
		case !updated.CanRetry():
			res.PermanentlyFailed++
			m.logger.LogAttrs(ctx, slog.LevelWarn, "notification out of retry attempts",
				logger.NotificationID(updated.ID),
				logger.UserID(updated.UserID),
				logger.Attempts(updated.Attempts),
			)
		}
	})

	if res.Retried > 0 || res.PermanentlyFailed > 0 {
		m.logger.LogAttrs(ctx, slog.LevelInfo, "failed notifications retried",
			logger.Count("retried", res.Retried),
			logger.Count("succeeded", res.Succeeded),
			logger.Count("permanently_failed", res.PermanentlyFailed),
			logger.Count("skipped", res.Skipped),
		)
	}
	return res, err
}

// retryDue reports whether the exponential backoff since the last attempt
// elapsed.
func (m *Manager) retryDue(n notification.Notification, now time.Time) bool {
	if n.LastAttemptAt == nil || n.Attempts < 1 {
		return true
	}
	delay := m.retryBackoff << (n.Attempts - 1)
	return !now.Before(n.LastAttemptAt.Add(delay))
}

func (m *Manager) expire(ctx context.Context, n notification.Notification, now time.Time) {
	expired, err := n.Expire(now)
	if err != nil {
		return
	}
	if _, err := m.notifications.Update(ctx, expired); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelError, "failed to close expired notification",
			logger.NotificationID(n.ID),
			logger.Error(err),
		)
		return
	}
	m.logger.LogAttrs(ctx, slog.LevelInfo, "notification expired before delivery",
		logger.NotificationID(n.ID),
		logger.UserID(n.UserID),
	)
}

// inBatches calls fn for indexes [0, total) in sequential batches, pausing
// between them. It stops early when ctx is done.
func (m *Manager) inBatches(ctx context.Context, total int, fn func(i int)) error {
	for start := 0; start < total; start += m.batchSize {
		if start > 0 && m.batchPause > 0 {
			timer := time.NewTimer(m.batchPause)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		end := min(start+m.batchSize, total)
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
		}
	}
	return nil
}
