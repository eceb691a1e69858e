package preference

import (
	"context"
	"time"

	"github.com/riskhub/notify/pkg/notification"
)

// Storage persists preferences. A (user, type, channel) triple holds at most
// one preference.
type Storage interface {
	Create(ctx context.Context, p Preference) (Preference, error)
	Get(ctx context.Context, id int64) (Preference, error)
	Update(ctx context.Context, p Preference) (Preference, error)
	Delete(ctx context.Context, id int64) error

	ByUser(ctx context.Context, userID int64) ([]Preference, error)
	ByUserAndType(ctx context.Context, userID int64, typ notification.Type) ([]Preference, error)
	Active(ctx context.Context, userID int64) ([]Preference, error)
	ByChannel(ctx context.Context, userID int64, ch notification.Channel) ([]Preference, error)

	// CreateDefaults stores Defaults(userID), skipping triples that already
	// exist, and returns the created preferences.
	CreateDefaults(ctx context.Context, userID int64) ([]Preference, error)
	// SetActive switches the user's preferences on or off. With no types it
	// applies to all of them. It returns how many preferences changed.
	SetActive(ctx context.Context, userID int64, active bool, types ...notification.Type) (int, error)
	Exists(ctx context.Context, userID int64, typ notification.Type, ch notification.Channel) (bool, error)
	// UserIDsWith returns the users holding an active preference for the pair.
	UserIDsWith(ctx context.Context, typ notification.Type, ch notification.Channel) ([]int64, error)
	// Deliverable returns the user's preferences for typ that allow delivery
	// of priority at the given time.
	Deliverable(ctx context.Context, userID int64, typ notification.Type, priority notification.Priority, at time.Time) ([]Preference, error)
}

// FilterDeliverable keeps the preferences whose CanDeliver holds.
func FilterDeliverable(prefs []Preference, priority notification.Priority, at time.Time) []Preference {
	out := make([]Preference, 0, len(prefs))
	for _, p := range prefs {
		if p.CanDeliver(priority, at) {
			out = append(out, p)
		}
	}
	return out
}
