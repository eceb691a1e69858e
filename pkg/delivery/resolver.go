package delivery

import (
	"slices"
	"time"

	"github.com/riskhub/notify/pkg/notification"
	"github.com/riskhub/notify/pkg/preference"
)

// Resolution is the input of ResolveChannels.
type Resolution struct {
	Priority notification.Priority
	// Channel, when set, is the only channel used.
	Channel *notification.Channel
	// Force bypasses preferences and uses DefaultChannel.
	Force          bool
	DefaultChannel notification.Channel
	// Preferences are the target user's preferences for the type.
	Preferences []preference.Preference
	At          time.Time
}

// ResolveChannels picks the channels a notification goes out on:
//
//  1. an explicit channel wins;
//  2. a forced send uses the template's default channel;
//  3. otherwise every channel whose preference allows delivery now, in
//     preference order and without duplicates;
//  4. CRITICA notifications with no surviving channel fall back to EMAIL.
//
// An empty result means nothing is sent.
func ResolveChannels(r Resolution) []notification.Channel {
	if r.Channel != nil {
		return []notification.Channel{*r.Channel}
	}
	if r.Force {
		return []notification.Channel{r.DefaultChannel}
	}

	channels := make([]notification.Channel, 0, len(r.Preferences))
	for _, p := range preference.FilterDeliverable(r.Preferences, r.Priority, r.At) {
		if !slices.Contains(channels, p.Channel) {
			channels = append(channels, p.Channel)
		}
	}

	if len(channels) == 0 && r.Priority == notification.PriorityCritical {
		return []notification.Channel{notification.ChannelEmail}
	}
	return channels
}
