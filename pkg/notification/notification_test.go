package notification_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskhub/notify/pkg/notification"
	"github.com/riskhub/notify/pkg/validator"
)

var created = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

func validParams() notification.Params {
	return notification.Params{
		Type:      notification.TypeActivityDue,
		Title:     "Actividad próxima a vencer",
		Body:      "La actividad Revisión vence el 07/03/2025",
		UserID:    7,
		Channel:   notification.ChannelEmail,
		Priority:  notification.PriorityMedium,
		CreatedAt: created,
	}
}

func mustNew(t *testing.T, mutate ...func(*notification.Params)) notification.Notification {
	t.Helper()
	p := validParams()
	for _, m := range mutate {
		m(&p)
	}
	n, err := notification.New(p)
	require.NoError(t, err)
	return n
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid input starts pending", func(t *testing.T) {
		t.Parallel()

		n := mustNew(t)
		assert.Nil(t, n.ID)
		assert.Equal(t, notification.StatePending, n.State)
		assert.Equal(t, 0, n.Attempts)
		assert.Equal(t, created, n.CreatedAt)
		assert.Nil(t, n.SentAt)
		assert.Nil(t, n.ReadAt)
		assert.Nil(t, n.LastError)
	})

	t.Run("limits are inclusive", func(t *testing.T) {
		t.Parallel()

		n := mustNew(t, func(p *notification.Params) {
			p.Title = strings.Repeat("é", notification.MaxTitleLength)
			p.Body = strings.Repeat("b", notification.MaxBodyLength)
		})
		assert.Equal(t, notification.MaxTitleLength, len([]rune(n.Title)))
	})

	t.Run("zero creation time is filled", func(t *testing.T) {
		t.Parallel()

		n := mustNew(t, func(p *notification.Params) { p.CreatedAt = time.Time{} })
		assert.False(t, n.CreatedAt.IsZero())
	})

	t.Run("metadata is copied", func(t *testing.T) {
		t.Parallel()

		meta := map[string]any{"k": "v"}
		n := mustNew(t, func(p *notification.Params) { p.Metadata = meta })
		meta["k"] = "changed"
		assert.Equal(t, "v", n.Metadata["k"])
	})
}

func TestNew_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*notification.Params)
		field  string
	}{
		{"empty title", func(p *notification.Params) { p.Title = "" }, "title"},
		{"blank title", func(p *notification.Params) { p.Title = "   " }, "title"},
		{"title too long", func(p *notification.Params) { p.Title = strings.Repeat("a", 256) }, "title"},
		{"empty body", func(p *notification.Params) { p.Body = "" }, "body"},
		{"body too long", func(p *notification.Params) { p.Body = strings.Repeat("a", 2001) }, "body"},
		{"missing target", func(p *notification.Params) { p.UserID = 0 }, "user_id"},
		{"negative attempts", func(p *notification.Params) { p.Attempts = -1 }, "attempts"},
		{"unknown priority", func(p *notification.Params) { p.Priority = "URGENTE" }, "priority"},
		{"unknown channel", func(p *notification.Params) { p.Channel = "FAX" }, "channel"},
		{"unknown type", func(p *notification.Params) { p.Type = "OTRO" }, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validParams()
			tt.mutate(&p)

			_, err := notification.New(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, notification.ErrValidation)
			assert.True(t, validator.Extract(err).Has(tt.field), "expected error on %s, got %v", tt.field, err)
		})
	}
}

func TestLifecycle(t *testing.T) {
	t.Parallel()

	sentAt := created.Add(time.Minute)
	readAt := created.Add(time.Hour)

	t.Run("sent then read keeps both timestamps", func(t *testing.T) {
		t.Parallel()

		n := mustNew(t)
		sent, err := n.MarkSent(sentAt)
		require.NoError(t, err)
		read, err := sent.MarkRead(readAt)
		require.NoError(t, err)

		assert.Equal(t, notification.StateRead, read.State)
		require.NotNil(t, read.SentAt)
		require.NotNil(t, read.ReadAt)
		assert.Equal(t, sentAt, *read.SentAt)
		assert.Equal(t, readAt, *read.ReadAt)

		// Original values are untouched.
		assert.Equal(t, notification.StatePending, n.State)
		assert.Equal(t, notification.StateSent, sent.State)
		assert.Nil(t, sent.ReadAt)
	})

	t.Run("pending can be read directly", func(t *testing.T) {
		t.Parallel()

		read, err := mustNew(t).MarkRead(readAt)
		require.NoError(t, err)
		assert.Equal(t, notification.StateRead, read.State)
		assert.Nil(t, read.SentAt)
	})

	t.Run("three errors exhaust retries", func(t *testing.T) {
		t.Parallel()

		n := mustNew(t)
		var err error
		for i := range 3 {
			assert.True(t, n.CanRetry(), "attempt %d", i)
			n, err = n.MarkError("smtp timeout", created)
			require.NoError(t, err)
		}

		assert.Equal(t, notification.StateError, n.State)
		assert.Equal(t, 3, n.Attempts)
		require.NotNil(t, n.LastError)
		assert.Equal(t, "smtp timeout", *n.LastError)
		assert.False(t, n.CanRetry())

		_, err = n.Retry()
		require.Error(t, err)
		assert.ErrorIs(t, err, notification.ErrInvalidState)

		var stateErr *notification.InvalidStateError
		require.True(t, errors.As(err, &stateErr))
		assert.Equal(t, notification.StateError, stateErr.From)
	})

	t.Run("retry returns to pending and clears the error", func(t *testing.T) {
		t.Parallel()

		failed, err := mustNew(t).MarkError("boom", created)
		require.NoError(t, err)

		retried, err := failed.Retry()
		require.NoError(t, err)
		assert.Equal(t, notification.StatePending, retried.State)
		assert.Nil(t, retried.LastError)
		assert.Equal(t, 1, retried.Attempts)
		require.NotNil(t, failed.LastError)
	})

	t.Run("illegal transitions", func(t *testing.T) {
		t.Parallel()

		pending := mustNew(t)
		sent, err := pending.MarkSent(sentAt)
		require.NoError(t, err)
		read, err := sent.MarkRead(readAt)
		require.NoError(t, err)

		_, err = sent.MarkSent(sentAt)
		assert.ErrorIs(t, err, notification.ErrInvalidState)
		_, err = read.MarkRead(readAt)
		assert.ErrorIs(t, err, notification.ErrInvalidState)
		_, err = read.MarkError("late", readAt)
		assert.ErrorIs(t, err, notification.ErrInvalidState)
		_, err = pending.Retry()
		assert.ErrorIs(t, err, notification.ErrInvalidState)
		assert.False(t, sent.CanRetry())
		assert.False(t, read.CanRetry())
	})

	t.Run("sent can still fail", func(t *testing.T) {
		t.Parallel()

		sent, err := mustNew(t).MarkSent(sentAt)
		require.NoError(t, err)
		failed, err := sent.MarkError("bounced", readAt)
		require.NoError(t, err)
		assert.Equal(t, notification.StateError, failed.State)
		assert.Equal(t, 1, failed.Attempts)
	})
}

func TestIsExpired(t *testing.T) {
	t.Parallel()

	expiry := created.Add(24 * time.Hour)
	n := mustNew(t, func(p *notification.Params) { p.ExpiresAt = &expiry })

	assert.False(t, n.IsExpired(expiry))
	assert.True(t, n.IsExpired(expiry.Add(time.Second)))
	assert.False(t, mustNew(t).IsExpired(expiry.Add(time.Hour)))
}

func TestPriorityRank(t *testing.T) {
	t.Parallel()

	prios := notification.Priorities()
	for i := 1; i < len(prios); i++ {
		assert.Less(t, prios[i-1].Rank(), prios[i].Rank())
		assert.True(t, prios[i].AtLeast(prios[i-1]))
		assert.False(t, prios[i-1].AtLeast(prios[i]))
	}
	assert.Equal(t, -1, notification.Priority("X").Rank())
}

func TestRelatedMatches(t *testing.T) {
	t.Parallel()

	candidate := notification.Related{RiskID: notification.Ref[int64](5)}

	assert.True(t, candidate.Matches(notification.Related{RiskID: notification.Ref[int64](5), ProjectID: notification.Ref[int64](9)}))
	assert.False(t, candidate.Matches(notification.Related{RiskID: notification.Ref[int64](6)}))
	assert.False(t, candidate.Matches(notification.Related{}))
	assert.True(t, notification.Related{}.Matches(notification.Related{AuditID: notification.Ref[int64](1)}))
	assert.True(t, notification.Related{}.IsZero())
	assert.False(t, candidate.IsZero())
}

func TestExpire(t *testing.T) {
	t.Parallel()

	expired, err := mustNew(t).Expire(created)
	require.NoError(t, err)
	assert.Equal(t, notification.StateError, expired.State)
	assert.Equal(t, notification.MaxAttempts, expired.Attempts)
	require.NotNil(t, expired.LastError)
	assert.Equal(t, notification.ExpiredReason, *expired.LastError)
	assert.False(t, expired.CanRetry())

	read, err := mustNew(t).MarkRead(created)
	require.NoError(t, err)
	_, err = read.Expire(created)
	assert.ErrorIs(t, err, notification.ErrInvalidState)
}
