package notification_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskhub/notify/pkg/notification"
)

func seed(t *testing.T, s *notification.MemoryStorage, mutate ...func(*notification.Params)) notification.Notification {
	t.Helper()
	n, err := s.Create(context.Background(), mustNew(t, mutate...))
	require.NoError(t, err)
	require.NotNil(t, n.ID)
	return n
}

func TestMemoryStorage_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := notification.NewMemoryStorage()

	a := seed(t, s)
	b := seed(t, s)
	assert.NotEqual(t, *a.ID, *b.ID)

	got, err := s.Get(ctx, *a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)

	sent, err := got.MarkSent(created)
	require.NoError(t, err)
	_, err = s.Update(ctx, sent)
	require.NoError(t, err)

	got, err = s.Get(ctx, *a.ID)
	require.NoError(t, err)
	assert.Equal(t, notification.StateSent, got.State)

	require.NoError(t, s.Delete(ctx, *a.ID))
	_, err = s.Get(ctx, *a.ID)
	assert.ErrorIs(t, err, notification.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, *a.ID), notification.ErrNotFound)

	_, err = s.Update(ctx, mustNew(t))
	assert.ErrorIs(t, err, notification.ErrNotFound)
}

func TestMemoryStorage_CreateValidates(t *testing.T) {
	t.Parallel()

	_, err := notification.NewMemoryStorage().Create(context.Background(), notification.Notification{})
	assert.ErrorIs(t, err, notification.ErrValidation)
}

func TestMemoryStorage_Queries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := notification.NewMemoryStorage()

	old := seed(t, s, func(p *notification.Params) { p.CreatedAt = created.Add(-48 * time.Hour) })
	fresh := seed(t, s, func(p *notification.Params) {
		p.Type = notification.TypeCriticalRisk
		p.Priority = notification.PriorityCritical
		p.Related.RiskID = notification.Ref[int64](11)
	})
	other := seed(t, s, func(p *notification.Params) { p.UserID = 99 })

	failed, err := fresh.MarkError("down", created)
	require.NoError(t, err)
	_, err = s.Update(ctx, failed)
	require.NoError(t, err)

	t.Run("list by user is newest first and paged", func(t *testing.T) {
		list, err := s.ListByUser(ctx, 7, notification.Page{})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, *fresh.ID, *list[0].ID)
		assert.Equal(t, *old.ID, *list[1].ID)

		page, err := s.ListByUser(ctx, 7, notification.Page{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, *old.ID, *page[0].ID)

		empty, err := s.ListByUser(ctx, 7, notification.Page{Offset: 5})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("pending and failed", func(t *testing.T) {
		pending, err := s.Pending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, *old.ID, *pending[0].ID)
		assert.Equal(t, *other.ID, *pending[1].ID)

		errs, err := s.Failed(ctx)
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Equal(t, *fresh.ID, *errs[0].ID)
	})

	t.Run("find by related id and type", func(t *testing.T) {
		found, err := s.Find(ctx, notification.Filter{
			UserID:  notification.Ref[int64](7),
			Types:   []notification.Type{notification.TypeCriticalRisk},
			Related: notification.Related{RiskID: notification.Ref[int64](11)},
		})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, *fresh.ID, *found[0].ID)

		from := created.Add(-time.Hour)
		recent, err := s.Find(ctx, notification.Filter{CreatedFrom: &from})
		require.NoError(t, err)
		assert.Len(t, recent, 2)
	})

	t.Run("counts and stats", func(t *testing.T) {
		count, err := s.CountUnread(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		stats, err := s.StatsByType(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, notification.TypeStats{Total: 1, Unread: 1, Pending: 1}, stats[notification.TypeActivityDue])
		assert.Equal(t, notification.TypeStats{Total: 1, Unread: 1, Failed: 1}, stats[notification.TypeCriticalRisk])
	})
}

func TestMemoryStorage_Expired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := notification.NewMemoryStorage()

	expiry := created.Add(time.Hour)
	stale := seed(t, s, func(p *notification.Params) { p.ExpiresAt = &expiry })
	seed(t, s)

	expired, err := s.Expired(ctx, expiry.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, *stale.ID, *expired[0].ID)

	found, err := s.Find(ctx, notification.Filter{ExpiredOnly: true, Now: expiry.Add(time.Minute)})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestMemoryStorage_BulkOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := notification.NewMemoryStorage()

	seed(t, s, func(p *notification.Params) { p.CreatedAt = created.AddDate(0, 0, -40) })
	seed(t, s)
	failed, err := seed(t, s).MarkError("x", created)
	require.NoError(t, err)
	_, err = s.Update(ctx, failed)
	require.NoError(t, err)

	changed, err := s.MarkAllRead(ctx, 7, created)
	require.NoError(t, err)
	assert.Equal(t, 2, changed, "records in ERROR are not marked read")

	unread, err := s.Unread(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	deleted, err := s.DeleteOlderThan(ctx, 7, created.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestMemoryStorage_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := notification.NewMemoryStorage()

	n := mustNew(t)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Create(ctx, n)
			_, _ = s.CountUnread(ctx, 7)
		}()
	}
	wg.Wait()

	count, err := s.CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
