package delivery

import (
	"context"
	"time"

	"github.com/riskhub/notify/pkg/cache"
)

// User is the part of a platform user the engine needs.
type User struct {
	ID    int64
	Email string
	Name  string
}

// UserLookup resolves target users. It returns an error matching
// notification.ErrNotFound for unknown ids.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (User, error)
}

// CachedUsers fronts a UserLookup with a TTL cache. Lookup errors, including
// not found, are never cached.
type CachedUsers struct {
	next  UserLookup
	users *cache.LRU[int64, User]
}

// NewCachedUsers caches up to size users for ttl.
func NewCachedUsers(next UserLookup, size int, ttl time.Duration, opts ...cache.Option) *CachedUsers {
	return &CachedUsers{
		next:  next,
		users: cache.New[int64, User](size, append([]cache.Option{cache.WithTTL(ttl)}, opts...)...),
	}
}

func (c *CachedUsers) GetUser(ctx context.Context, id int64) (User, error) {
	if u, ok := c.users.Get(id); ok {
		return u, nil
	}
	u, err := c.next.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	c.users.Put(id, u)
	return u, nil
}

// Forget drops id so the next lookup reaches the directory.
func (c *CachedUsers) Forget(id int64) {
	c.users.Remove(id)
}
