package notification

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of Storage.
// Suitable for development and testing.
type MemoryStorage struct {
	mu     sync.RWMutex
	items  map[int64]Notification
	nextID int64
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: make(map[int64]Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, n Notification) (Notification, error) {
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	n = n.clone()
	n.ID = &id
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.items[id] = n

	return n.clone(), nil
}

func (s *MemoryStorage) Get(ctx context.Context, id int64) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.items[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	// Return a copy so callers cannot reach stored metadata.
	return n.clone(), nil
}

func (s *MemoryStorage) Update(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == nil {
		return Notification{}, ErrNotFound
	}
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[*n.ID]; !ok {
		return Notification{}, ErrNotFound
	}
	s.items[*n.ID] = n.clone()

	return n.clone(), nil
}

func (s *MemoryStorage) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStorage) ListByUser(ctx context.Context, userID int64, page Page) ([]Notification, error) {
	return s.Find(ctx, Filter{UserID: &userID, Page: page})
}

func (s *MemoryStorage) Unread(ctx context.Context, userID int64) ([]Notification, error) {
	return s.Find(ctx, Filter{UserID: &userID, UnreadOnly: true})
}

func (s *MemoryStorage) Pending(ctx context.Context) ([]Notification, error) {
	return s.retryable(StatePending), nil
}

func (s *MemoryStorage) Failed(ctx context.Context) ([]Notification, error) {
	return s.retryable(StateError), nil
}

func (s *MemoryStorage) Expired(ctx context.Context, now time.Time) ([]Notification, error) {
	out := s.collect(func(n Notification) bool {
		return (n.State == StatePending || n.State == StateError) && n.IsExpired(now)
	})
	sortOldestFirst(out)
	return out, nil
}

func (s *MemoryStorage) Find(ctx context.Context, f Filter) ([]Notification, error) {
	out := s.collect(f.Match)
	sortNewestFirst(out)
	return f.Page.apply(out), nil
}

func (s *MemoryStorage) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for id, n := range s.items {
		if n.UserID != userID {
			continue
		}
		read, err := n.MarkRead(at)
		if err != nil {
			continue
		}
		s.items[id] = read
		changed++
	}
	return changed, nil
}

func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, n := range s.items {
		if n.UserID == userID && n.CreatedAt.Before(cutoff) {
			delete(s.items, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID int64) (int, error) {
	return len(s.collect(func(n Notification) bool {
		return n.UserID == userID && !n.IsRead()
	})), nil
}

func (s *MemoryStorage) StatsByType(ctx context.Context, userID int64) (map[Type]TypeStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[Type]TypeStats)
	for _, n := range s.items {
		if n.UserID != userID {
			continue
		}
		st := stats[n.Type]
		st.Total++
		switch n.State {
		case StatePending:
			st.Pending++
		case StateSent:
			st.Sent++
		case StateRead:
			st.Read++
		case StateError:
			st.Failed++
		}
		if !n.IsRead() {
			st.Unread++
		}
		stats[n.Type] = st
	}
	return stats, nil
}

func (s *MemoryStorage) retryable(state State) []Notification {
	out := s.collect(func(n Notification) bool {
		return n.State == state && n.Attempts < MaxAttempts
	})
	sortOldestFirst(out)
	return out
}

func (s *MemoryStorage) collect(keep func(Notification) bool) []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, 0)
	for _, n := range s.items {
		if keep(n) {
			out = append(out, n.clone())
		}
	}
	return out
}

func sortNewestFirst(items []Notification) {
	slices.SortFunc(items, func(a, b Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(*b.ID, *a.ID)
	})
}

func sortOldestFirst(items []Notification) {
	slices.SortFunc(items, func(a, b Notification) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(*a.ID, *b.ID)
	})
}
