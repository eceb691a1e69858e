package notification

import (
	"context"
	"slices"
	"time"
)

// Storage persists notifications. Implementations return ErrNotFound for
// unknown ids and must treat stored values as replaced wholesale by Update.
type Storage interface {
	// Create stores n and returns it with its assigned ID.
	Create(ctx context.Context, n Notification) (Notification, error)
	Get(ctx context.Context, id int64) (Notification, error)
	// Update replaces the stored record with the same ID.
	Update(ctx context.Context, n Notification) (Notification, error)
	Delete(ctx context.Context, id int64) error

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID int64, page Page) ([]Notification, error)
	// Unread returns a user's notifications that are not READ, newest first.
	Unread(ctx context.Context, userID int64) ([]Notification, error)
	// Pending returns PENDING records whose attempt count is below
	// MaxAttempts, oldest first.
	Pending(ctx context.Context) ([]Notification, error)
	// Failed returns ERROR records whose attempt count is below MaxAttempts,
	// oldest first.
	Failed(ctx context.Context) ([]Notification, error)
	// Expired returns undelivered records whose expiry is before now.
	Expired(ctx context.Context, now time.Time) ([]Notification, error)
	// Find returns records matching f, newest first.
	Find(ctx context.Context, f Filter) ([]Notification, error)

	// MarkAllRead moves every PENDING or SENT record of the user to READ and
	// returns how many changed.
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int, error)
	// DeleteOlderThan removes the user's records created before cutoff.
	DeleteOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int, error)

	CountUnread(ctx context.Context, userID int64) (int, error)
	StatsByType(ctx context.Context, userID int64) (map[Type]TypeStats, error)
}

// Page limits a listing. Zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// apply slices items according to the page.
func (p Page) apply(items []Notification) []Notification {
	if p.Offset >= len(items) {
		return []Notification{}
	}
	items = items[max(p.Offset, 0):]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

// TypeStats aggregates a user's notifications of one type.
type TypeStats struct {
	Total   int `json:"total"`
	Unread  int `json:"unread"`
	Sent    int `json:"sent"`
	Read    int `json:"read"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
}

// Filter selects notifications. Zero-valued fields do not constrain the result.
type Filter struct {
	UserID       *int64
	OriginUserID *int64
	Types        []Type
	States       []State
	Channels     []Channel
	Priorities   []Priority
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	UnreadOnly   bool
	// ExpiredOnly keeps records whose expiry is before Now.
	ExpiredOnly bool
	// Related constrains every related-entity id set on it.
	Related Related
	// Now is the reference time for ExpiredOnly. Zero means time.Now.
	Now  time.Time
	Page Page
}

// Match reports whether n satisfies every constraint of f except paging.
func (f Filter) Match(n Notification) bool {
	if f.UserID != nil && n.UserID != *f.UserID {
		return false
	}
	if f.OriginUserID != nil && (n.OriginUserID == nil || *n.OriginUserID != *f.OriginUserID) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, n.Type) {
		return false
	}
	if len(f.States) > 0 && !slices.Contains(f.States, n.State) {
		return false
	}
	if len(f.Channels) > 0 && !slices.Contains(f.Channels, n.Channel) {
		return false
	}
	if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, n.Priority) {
		return false
	}
	if f.CreatedFrom != nil && n.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && n.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.UnreadOnly && n.IsRead() {
		return false
	}
	if f.ExpiredOnly && !n.IsExpired(f.now()) {
		return false
	}
	return f.Related.Matches(n.Related)
}

func (f Filter) now() time.Time {
	if f.Now.IsZero() {
		return time.Now()
	}
	return f.Now
}
