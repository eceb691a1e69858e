package preference_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskhub/notify/pkg/notification"
	"github.com/riskhub/notify/pkg/preference"
)

func TestMemoryStorage_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := preference.NewMemoryStorage()

	p, err := s.Create(ctx, businessHours(t))
	require.NoError(t, err)
	require.NotNil(t, p.ID)

	_, err = s.Create(ctx, businessHours(t))
	assert.ErrorIs(t, err, preference.ErrDuplicate)

	got, err := s.Get(ctx, *p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = s.Update(ctx, got.Deactivate())
	require.NoError(t, err)
	got, err = s.Get(ctx, *p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = s.Update(ctx, businessHours(t))
	assert.ErrorIs(t, err, preference.ErrNotFound)

	require.NoError(t, s.Delete(ctx, *p.ID))
	_, err = s.Get(ctx, *p.ID)
	assert.ErrorIs(t, err, preference.ErrNotFound)
}

func TestMemoryStorage_Defaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := preference.NewMemoryStorage()

	created, err := s.CreateDefaults(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, created, len(preference.Defaults(7)))

	again, err := s.CreateDefaults(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, again, "existing triples are skipped")

	all, err := s.ByUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, all, len(created))

	activity, err := s.ByUserAndType(ctx, 7, notification.TypeActivityDue)
	require.NoError(t, err)
	assert.Len(t, activity, 2)

	email, err := s.ByChannel(ctx, 7, notification.ChannelEmail)
	require.NoError(t, err)
	for _, p := range email {
		assert.Equal(t, notification.ChannelEmail, p.Channel)
	}

	exists, err := s.Exists(ctx, 7, notification.TypeNewEvidence, notification.ChannelSystem)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.Exists(ctx, 7, notification.TypeNewEvidence, notification.ChannelEmail)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStorage_SetActiveAndLookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := preference.NewMemoryStorage()

	_, err := s.CreateDefaults(ctx, 7)
	require.NoError(t, err)
	_, err = s.CreateDefaults(ctx, 8)
	require.NoError(t, err)

	ids, err := s.UserIDsWith(ctx, notification.TypeActivityDue, notification.ChannelEmail)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, ids)

	changed, err := s.SetActive(ctx, 8, false, notification.TypeActivityDue)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	ids, err = s.UserIDsWith(ctx, notification.TypeActivityDue, notification.ChannelEmail)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)

	changed, err = s.SetActive(ctx, 7, false)
	require.NoError(t, err)
	assert.Equal(t, len(preference.Defaults(7)), changed)

	active, err := s.Active(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, active)

	changed, err = s.SetActive(ctx, 7, true)
	require.NoError(t, err)
	assert.Equal(t, len(preference.Defaults(7)), changed)
}

func TestMemoryStorage_Deliverable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := preference.NewMemoryStorage()

	_, err := s.CreateDefaults(ctx, 7)
	require.NoError(t, err)

	wednesday, err := s.Deliverable(ctx, 7, notification.TypeActivityDue, notification.PriorityMedium, at(5, "10:00"))
	require.NoError(t, err)
	assert.Len(t, wednesday, 2)

	saturday, err := s.Deliverable(ctx, 7, notification.TypeActivityDue, notification.PriorityMedium, at(8, "10:00"))
	require.NoError(t, err)
	require.Len(t, saturday, 1)
	assert.Equal(t, notification.ChannelSystem, saturday[0].Channel)
}
