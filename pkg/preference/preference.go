package preference

import (
	"errors"
	"slices"
	"time"

	"github.com/riskhub/notify/pkg/notification"
	"github.com/riskhub/notify/pkg/validator"
)

// Preference gates whether a notification type may reach a user through one
// channel. Optional fields left nil do not restrict delivery.
type Preference struct {
	ID      *int64               `json:"id,omitempty"`
	UserID  int64                `json:"user_id"`
	Type    notification.Type    `json:"type"`
	Channel notification.Channel `json:"channel"`
	Active  bool                 `json:"active"`
	// IntervalMinutes is the recurrence hint for digest-like reminders.
	IntervalMinutes *int `json:"interval_minutes,omitempty"`
	// WindowStart and WindowEnd are "HH:MM" clock times, both set or both nil.
	WindowStart *string `json:"window_start,omitempty"`
	WindowEnd   *string `json:"window_end,omitempty"`
	// Weekdays uses time.Weekday numbering: 0 is Sunday.
	Weekdays    []int                  `json:"weekdays,omitempty"`
	MinPriority *notification.Priority `json:"min_priority,omitempty"`
}

// Params are the inputs of New.
type Params struct {
	UserID          int64
	Type            notification.Type
	Channel         notification.Channel
	Active          bool
	IntervalMinutes *int
	WindowStart     *string
	WindowEnd       *string
	Weekdays        []int
	MinPriority     *notification.Priority
}

// New validates p and returns the preference.
func New(p Params) (Preference, error) {
	pref := Preference{
		UserID:          p.UserID,
		Type:            p.Type,
		Channel:         p.Channel,
		Active:          p.Active,
		IntervalMinutes: p.IntervalMinutes,
		WindowStart:     p.WindowStart,
		WindowEnd:       p.WindowEnd,
		Weekdays:        slices.Clone(p.Weekdays),
		MinPriority:     p.MinPriority,
	}
	if err := pref.Validate(); err != nil {
		return Preference{}, err
	}
	return pref, nil
}

// Validate checks the record invariants.
func (p Preference) Validate() error {
	rules := []validator.Rule{
		validator.Positive("user_id", p.UserID),
		validator.OneOf("type", p.Type, notification.Types()...),
		validator.OneOf("channel", p.Channel, notification.Channels()...),
		validator.Together("window", p.WindowStart != nil, p.WindowEnd != nil),
		validator.EachInRange("weekdays", p.Weekdays, 0, 6),
	}
	if p.IntervalMinutes != nil {
		rules = append(rules, validator.Positive("interval_minutes", *p.IntervalMinutes))
	}
	if p.WindowStart != nil {
		rules = append(rules, validator.ClockTime("window_start", *p.WindowStart))
	}
	if p.WindowEnd != nil {
		rules = append(rules, validator.ClockTime("window_end", *p.WindowEnd))
	}
	if p.MinPriority != nil {
		rules = append(rules, validator.OneOf("min_priority", *p.MinPriority, notification.Priorities()...))
	}

	if err := validator.Apply(rules...); err != nil {
		return errors.Join(notification.ErrValidation, err)
	}
	return nil
}

// CanDeliver reports whether a notification of the given priority may be
// delivered at the given time. The clock time and weekday of at are read in
// at's own location.
func (p Preference) CanDeliver(priority notification.Priority, at time.Time) bool {
	if !p.Active {
		return false
	}
	if p.MinPriority != nil && !priority.AtLeast(*p.MinPriority) {
		return false
	}
	if p.HasWindow() {
		// "HH:MM" strings order the same way as the times they spell.
		// Windows crossing midnight never match.
		clock := at.Format("15:04")
		if clock < *p.WindowStart || clock > *p.WindowEnd {
			return false
		}
	}
	if len(p.Weekdays) > 0 && !slices.Contains(p.Weekdays, int(at.Weekday())) {
		return false
	}
	return true
}

// HasWindow reports whether both ends of the time window are set.
func (p Preference) HasWindow() bool {
	return p.WindowStart != nil && p.WindowEnd != nil
}

// Activate returns a copy with Active set.
func (p Preference) Activate() Preference {
	p.Weekdays = slices.Clone(p.Weekdays)
	p.Active = true
	return p
}

// Deactivate returns a copy with Active cleared.
func (p Preference) Deactivate() Preference {
	p.Weekdays = slices.Clone(p.Weekdays)
	p.Active = false
	return p
}

// WithChannel returns a copy routed to ch.
func (p Preference) WithChannel(ch notification.Channel) (Preference, error) {
	p.Weekdays = slices.Clone(p.Weekdays)
	p.Channel = ch
	return p, p.Validate()
}

// WithWindow returns a copy restricted to [start, end].
func (p Preference) WithWindow(start, end string) (Preference, error) {
	p.Weekdays = slices.Clone(p.Weekdays)
	p.WindowStart, p.WindowEnd = &start, &end
	return p, p.Validate()
}

// WithoutWindow returns a copy with no time window.
func (p Preference) WithoutWindow() Preference {
	p.Weekdays = slices.Clone(p.Weekdays)
	p.WindowStart, p.WindowEnd = nil, nil
	return p
}

// WithWeekdays returns a copy limited to days. No days lifts the restriction.
func (p Preference) WithWeekdays(days ...int) (Preference, error) {
	p.Weekdays = slices.Clone(days)
	return p, p.Validate()
}

// WithMinPriority returns a copy with the given priority floor.
func (p Preference) WithMinPriority(floor notification.Priority) (Preference, error) {
	p.Weekdays = slices.Clone(p.Weekdays)
	p.MinPriority = &floor
	return p, p.Validate()
}

// WithInterval returns a copy with the recurrence interval set.
func (p Preference) WithInterval(minutes int) (Preference, error) {
	p.Weekdays = slices.Clone(p.Weekdays)
	p.IntervalMinutes = &minutes
	return p, p.Validate()
}
