package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskhub/notify/pkg/redis"
)

func TestNewLock_Validates(t *testing.T) {
	t.Parallel()
	client := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	_, err := redis.NewLock(nil, "k", time.Second)
	assert.ErrorIs(t, err, redis.ErrInvalidLock)

	_, err = redis.NewLock(client, "", time.Second)
	assert.ErrorIs(t, err, redis.ErrInvalidLock)

	_, err = redis.NewLock(client, "k", 0)
	assert.ErrorIs(t, err, redis.ErrInvalidLock)

	l, err := redis.NewLock(client, "k", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "k", l.Key())
}

func TestConnect_Validates(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://nope"})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}

// Runs against a real server when REDIS_TEST_URL is set.
func TestLock_Integration(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	ctx := context.Background()
	client, err := redis.Connect(ctx, redis.Config{ConnectionURL: url, RetryAttempts: 1, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, redis.Healthcheck(client)(ctx))

	key := "notify:test:lock:" + t.Name()
	t.Cleanup(func() { client.Del(ctx, key) })

	a, err := redis.NewLock(client, key, 10*time.Second)
	require.NoError(t, err)
	b, err := redis.NewLock(client, key, 10*time.Second)
	require.NoError(t, err)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "owner re-acquires")

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Release(ctx))
	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "non-owner release is a no-op")

	require.NoError(t, a.Release(ctx))
	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
