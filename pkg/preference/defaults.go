package preference

import (
	"github.com/riskhub/notify/pkg/notification"
)

// Business days, Monday to Friday.
var weekdays = []int{1, 2, 3, 4, 5}

type defaultEntry struct {
	typ      notification.Type
	channel  notification.Channel
	floor    *notification.Priority
	start    string
	end      string
	days     []int
	interval int
}

var defaultCatalog = []defaultEntry{
	{typ: notification.TypeCriticalRisk, channel: notification.ChannelEmail, floor: priority(notification.PriorityCritical)},
	{typ: notification.TypeCriticalRisk, channel: notification.ChannelSystem},
	{typ: notification.TypeSecurityIncident, channel: notification.ChannelEmail, floor: priority(notification.PriorityHigh)},
	{typ: notification.TypeSecurityIncident, channel: notification.ChannelSystem},
	{typ: notification.TypeActivityDue, channel: notification.ChannelSystem},
	{typ: notification.TypeActivityDue, channel: notification.ChannelEmail, start: "08:00", end: "18:00", days: weekdays},
	{typ: notification.TypePendingFinding, channel: notification.ChannelEmail, start: "08:00", end: "10:00", days: []int{1}, interval: 7 * 24 * 60},
	{typ: notification.TypeNewEvidence, channel: notification.ChannelSystem},
	{typ: notification.TypeAuditScheduled, channel: notification.ChannelEmail},
	{typ: notification.TypeAuditScheduled, channel: notification.ChannelSystem},
	{typ: notification.TypeControlExpired, channel: notification.ChannelEmail, floor: priority(notification.PriorityHigh)},
	{typ: notification.TypeControlExpired, channel: notification.ChannelSystem},
	{typ: notification.TypeProjectOverdue, channel: notification.ChannelSystem},
	{typ: notification.TypeProjectOverdue, channel: notification.ChannelEmail, days: weekdays},
}

func priority(p notification.Priority) *notification.Priority {
	return &p
}

// Defaults returns the starting preference set for a new user. All entries
// are active and have no ID.
func Defaults(userID int64) []Preference {
	out := make([]Preference, 0, len(defaultCatalog))
	for _, e := range defaultCatalog {
		p := Preference{
			UserID:  userID,
			Type:    e.typ,
			Channel: e.channel,
			Active:  true,
		}
		if e.floor != nil {
			p.MinPriority = priority(*e.floor)
		}
		if e.start != "" {
			start, end := e.start, e.end
			p.WindowStart, p.WindowEnd = &start, &end
		}
		if len(e.days) > 0 {
			p.Weekdays = append([]int(nil), e.days...)
		}
		if e.interval > 0 {
			interval := e.interval
			p.IntervalMinutes = &interval
		}
		out = append(out, p)
	}
	return out
}
