// Package cache provides a generic, thread-safe LRU cache with optional
// per-entry expiry.
//
// The least recently used entry is evicted once the capacity is exceeded.
// With WithTTL every entry also expires a fixed time after it was stored;
// expired entries are dropped lazily on access.
//
//	users := cache.New[int64, User](1024, cache.WithTTL(5*time.Minute))
//	users.Put(42, u)
//	if u, ok := users.Get(42); ok {
//		// fresh hit
//	}
package cache
