package delivery_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskhub/notify/pkg/delivery"
	"github.com/riskhub/notify/pkg/notification"
)

func (f *fixture) seed(t *testing.T, mutate ...func(*notification.Params)) notification.Notification {
	t.Helper()
	p := notification.Params{
		Type:      notification.TypeNewEvidence,
		Title:     "Nueva evidencia: acta.pdf",
		Body:      "Un usuario cargó la evidencia \"acta.pdf\".",
		UserID:    ana,
		Channel:   notification.ChannelSystem,
		Priority:  notification.PriorityLow,
		CreatedAt: f.clock.Now(),
	}
	for _, fn := range mutate {
		fn(&p)
	}
	n, err := notification.New(p)
	require.NoError(t, err)
	stored, err := f.notifications.Create(context.Background(), n)
	require.NoError(t, err)
	return stored
}

// seedFailed stores a record that failed once at the current clock time.
func (f *fixture) seedFailed(t *testing.T, mutate ...func(*notification.Params)) notification.Notification {
	t.Helper()
	n := f.seed(t, mutate...)
	failed, err := n.MarkError("smtp: 421 service not available", f.clock.Now())
	require.NoError(t, err)
	stored, err := f.notifications.Update(context.Background(), failed)
	require.NoError(t, err)
	return stored
}

func (f *fixture) get(t *testing.T, n notification.Notification) notification.Notification {
	t.Helper()
	got, err := f.notifications.Get(context.Background(), *n.ID)
	require.NoError(t, err)
	return got
}

func smsChannel(p *notification.Params) { p.Channel = notification.ChannelSMS }

func TestManager_ProcessPending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("second run finds nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, wednesday)
		f.expectEmail(1)

		for range 3 {
			f.seed(t)
		}
		f.seed(t, func(p *notification.Params) { p.Channel = notification.ChannelEmail })

		res, err := f.manager.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.BatchResult{Processed: 4, Sent: 4}, res)

		res, err = f.manager.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Processed)
	})

	t.Run("failures are recorded", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, wednesday)

		sms := f.seed(t, smsChannel)
		orphan := f.seed(t, func(p *notification.Params) { p.UserID = 404 })
		ok := f.seed(t)

		res, err := f.manager.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.BatchResult{Processed: 3, Sent: 1, Failed: 2}, res)

		got := f.get(t, sms)
		assert.Equal(t, notification.StateError, got.State)
		assert.Equal(t, 1, got.Attempts)

		got = f.get(t, orphan)
		assert.Equal(t, notification.StateError, got.State)
		require.NotNil(t, got.LastError)
		assert.Contains(t, *got.LastError, "user 404")

		assert.Equal(t, notification.StateSent, f.get(t, ok).State)
	})

	t.Run("expired records are closed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, wednesday)

		expired := f.seed(t, func(p *notification.Params) {
			p.ExpiresAt = notification.Ref(wednesday.Add(time.Hour))
		})
		f.clock.Advance(2 * time.Hour)

		res, err := f.manager.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.BatchResult{Processed: 1, Failed: 1}, res)

		got := f.get(t, expired)
		assert.Equal(t, notification.StateError, got.State)
		require.NotNil(t, got.LastError)
		assert.Equal(t, notification.ExpiredReason, *got.LastError)
		assert.False(t, got.CanRetry())

		retry, err := f.manager.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.RetryResult{}, retry)
	})

	t.Run("batches cover every record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, wednesday, delivery.WithBatchSize(2), delivery.WithBatchPause(time.Millisecond))

		for range 5 {
			f.seed(t)
		}

		res, err := f.manager.ProcessPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, res.Sent)
	})

	t.Run("cancellation stops between batches", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, wednesday, delivery.WithBatchSize(2), delivery.WithBatchPause(time.Hour))

		for range 5 {
			f.seed(t)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		res, err := f.manager.ProcessPending(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 2, res.Processed)

		pending, err := f.notifications.Pending(context.Background())
		require.NoError(t, err)
		assert.Len(t, pending, 3)
	})
}

func TestManager_RetryFailed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("waits for the backoff", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, wednesday)
		failed := f.seedFailed(t)

		f.clock.Advance(10 * time.Second)
		res, err := f.manager.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.RetryResult{Skipped: 1}, res)

		f.clock.Advance(25 * time.Second)
		res, err = f.manager.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.RetryResult{Retried: 1, Succeeded: 1}, res)

		got := f.get(t, failed)
		assert.Equal(t, notification.StateSent, got.State)
		assert.Nil(t, got.LastError)
		assert.Equal(t, 1, got.Attempts)
	})

	t.Run("backoff doubles per attempt", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, wednesday, delivery.WithRetryBackoff(time.Minute))
		failed := f.seedFailed(t, smsChannel)

		f.clock.Advance(time.Minute)
		res, err := f.manager.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.RetryResult{Retried: 1}, res)
		assert.Equal(t, 2, f.get(t, failed).Attempts)

		f.clock.Advance(time.Minute)
		res, err = f.manager.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.RetryResult{Skipped: 1}, res)

		f.clock.Advance(time.Minute)
		res, err = f.manager.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.RetryResult{Retried: 1, PermanentlyFailed: 1}, res)

		got := f.get(t, failed)
		assert.Equal(t, notification.StateError, got.State)
		assert.Equal(t, notification.MaxAttempts, got.Attempts)

		f.clock.Advance(time.Hour)
		res, err = f.manager.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.RetryResult{}, res)
	})

	t.Run("expired records are not retried", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, wednesday)
		failed := f.seedFailed(t, func(p *notification.Params) {
			p.ExpiresAt = notification.Ref(wednesday.Add(time.Minute))
		})

		f.clock.Advance(time.Hour)
		res, err := f.manager.RetryFailed(ctx)
		require.NoError(t, err)
		assert.Equal(t, delivery.RetryResult{PermanentlyFailed: 1}, res)

		got := f.get(t, failed)
		require.NotNil(t, got.LastError)
		assert.Equal(t, notification.ExpiredReason, *got.LastError)
		assert.False(t, got.CanRetry())
	})
}
