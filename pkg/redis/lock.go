package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Only the owner's token may delete or extend the key.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

	extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// Lock is a lease on a single key with an expiry. Each Lock carries its own
// random token, so two processes never release each other's lease.
type Lock struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	token  string
}

// NewLock creates a lease on key that expires after ttl unless released.
func NewLock(client redis.UniversalClient, key string, ttl time.Duration) (*Lock, error) {
	if client == nil || key == "" || ttl <= 0 {
		return nil, fmt.Errorf("%w: key %q ttl %s", ErrInvalidLock, key, ttl)
	}
	return &Lock{
		client: client,
		key:    key,
		ttl:    ttl,
		token:  uuid.NewString(),
	}, nil
}

// NewLockFromConfig creates the sweep lock described by cfg.
func NewLockFromConfig(client redis.UniversalClient, cfg Config) (*Lock, error) {
	return NewLock(client, cfg.LockKey, cfg.LockTTL)
}

// Acquire takes the lease. It reports false when another owner holds it.
// Acquiring a lease already held by this Lock extends it.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		return true, nil
	}

	extended, err := extendScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("extend %s: %w", l.key, err)
	}
	return extended == 1, nil
}

// Release drops the lease if this Lock still owns it.
func (l *Lock) Release(ctx context.Context) error {
	err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}

// Key returns the locked key.
func (l *Lock) Key() string { return l.key }
