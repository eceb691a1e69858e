package preference

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/riskhub/notify/pkg/notification"
)

// MemoryStorage is an in-memory implementation of Storage.
// Suitable for development and testing.
type MemoryStorage struct {
	mu     sync.RWMutex
	items  map[int64]Preference
	nextID int64
}

// NewMemoryStorage creates a new in-memory preference storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: make(map[int64]Preference),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, p Preference) (Preference, error) {
	if err := p.Validate(); err != nil {
		return Preference{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insert(p)
}

func (s *MemoryStorage) insert(p Preference) (Preference, error) {
	if s.findLocked(p.UserID, p.Type, p.Channel) != nil {
		return Preference{}, ErrDuplicate
	}

	s.nextID++
	id := s.nextID
	p.ID = &id
	p.Weekdays = slices.Clone(p.Weekdays)
	s.items[id] = p

	return copyOf(p), nil
}

func (s *MemoryStorage) Get(ctx context.Context, id int64) (Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok {
		return Preference{}, ErrNotFound
	}
	return copyOf(p), nil
}

func (s *MemoryStorage) Update(ctx context.Context, p Preference) (Preference, error) {
	if p.ID == nil {
		return Preference{}, ErrNotFound
	}
	if err := p.Validate(); err != nil {
		return Preference{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[*p.ID]; !ok {
		return Preference{}, ErrNotFound
	}
	if other := s.findLocked(p.UserID, p.Type, p.Channel); other != nil && *other.ID != *p.ID {
		return Preference{}, ErrDuplicate
	}
	s.items[*p.ID] = copyOf(p)

	return copyOf(p), nil
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

func (s *MemoryStorage) ByUser(ctx context.Context, userID int64) ([]Preference, error) {
	return s.collect(func(p Preference) bool { return p.UserID == userID }), nil
}

func (s *MemoryStorage) ByUserAndType(ctx context.Context, userID int64, typ notification.Type) ([]Preference, error) {
	return s.collect(func(p Preference) bool {
		return p.UserID == userID && p.Type == typ
	}), nil
}

func (s *MemoryStorage) Active(ctx context.Context, userID int64) ([]Preference, error) {
	return s.collect(func(p Preference) bool {
		return p.UserID == userID && p.Active
	}), nil
}

func (s *MemoryStorage) ByChannel(ctx context.Context, userID int64, ch notification.Channel) ([]Preference, error) {
	return s.collect(func(p Preference) bool {
		return p.UserID == userID && p.Channel == ch
	}), nil
}

func (s *MemoryStorage) CreateDefaults(ctx context.Context, userID int64) ([]Preference, error) {
	defaults := Defaults(userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]Preference, 0, len(defaults))
	for _, p := range defaults {
		if s.findLocked(p.UserID, p.Type, p.Channel) != nil {
			continue
		}
		stored, err := s.insert(p)
		if err != nil {
			return created, err
		}
		created = append(created, stored)
	}
	return created, nil
}

func (s *MemoryStorage) SetActive(ctx context.Context, userID int64, active bool, types ...notification.Type) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for id, p := range s.items {
		if p.UserID != userID || p.Active == active {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, p.Type) {
			continue
		}
		p.Active = active
		s.items[id] = p
		changed++
	}
	return changed, nil
}

func (s *MemoryStorage) Exists(ctx context.Context, userID int64, typ notification.Type, ch notification.Channel) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findLocked(userID, typ, ch) != nil, nil
}

func (s *MemoryStorage) UserIDsWith(ctx context.Context, typ notification.Type, ch notification.Channel) ([]int64, error) {
	prefs := s.collect(func(p Preference) bool {
		return p.Active && p.Type == typ && p.Channel == ch
	})

	ids := make([]int64, 0, len(prefs))
	for _, p := range prefs {
		ids = append(ids, p.UserID)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (s *MemoryStorage) Deliverable(ctx context.Context, userID int64, typ notification.Type, priority notification.Priority, at time.Time) ([]Preference, error) {
	prefs, err := s.ByUserAndType(ctx, userID, typ)
	if err != nil {
		return nil, err
	}
	return FilterDeliverable(prefs, priority, at), nil
}

func (s *MemoryStorage) findLocked(userID int64, typ notification.Type, ch notification.Channel) *Preference {
	for _, p := range s.items {
		if p.UserID == userID && p.Type == typ && p.Channel == ch {
			return &p
		}
	}
	return nil
}

// collect returns matching preferences ordered by id.
func (s *MemoryStorage) collect(keep func(Preference) bool) []Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Preference, 0)
	for _, p := range s.items {
		if keep(p) {
			out = append(out, copyOf(p))
		}
	}
	slices.SortFunc(out, func(a, b Preference) int {
		return cmp.Compare(*a.ID, *b.ID)
	})
	return out
}

func copyOf(p Preference) Preference {
	p.Weekdays = slices.Clone(p.Weekdays)
	return p
}
