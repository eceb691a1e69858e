package notification

import (
	"errors"
	"maps"
	"time"

	"github.com/riskhub/notify/pkg/validator"
)

const (
	MaxTitleLength = 255
	MaxBodyLength  = 2000
	// MaxAttempts is the retry budget: a record with this many failed
	// attempts is never retried automatically.
	MaxAttempts = 3
)

// Notification is the unit of delivery: one rendered message for one user on
// one channel. It is a value type. Lifecycle methods return a modified copy
// and never touch the receiver; persisting the result is the caller's job.
type Notification struct {
	ID            *int64         `json:"id,omitempty"`
	Type          Type           `json:"type"`
	Title         string         `json:"title"`
	Body          string         `json:"body"`
	UserID        int64          `json:"user_id"`
	OriginUserID  *int64         `json:"origin_user_id,omitempty"`
	State         State          `json:"state"`
	Channel       Channel        `json:"channel"`
	Priority      Priority       `json:"priority"`
	CreatedAt     time.Time      `json:"created_at"`
	SentAt        *time.Time     `json:"sent_at,omitempty"`
	ReadAt        *time.Time     `json:"read_at,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	Related       Related        `json:"related"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Attempts      int            `json:"attempts"`
	LastError     *string        `json:"last_error,omitempty"`
	LastAttemptAt *time.Time     `json:"last_attempt_at,omitempty"`
}

// Params are the inputs of New.
type Params struct {
	Type         Type
	Title        string
	Body         string
	UserID       int64
	OriginUserID *int64
	Channel      Channel
	Priority     Priority
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	Related      Related
	Metadata     map[string]any
	Attempts     int
}

// New builds a PENDING notification after validating p. A zero CreatedAt is
// replaced with the current time.
func New(p Params) (Notification, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	n := Notification{
		Type:         p.Type,
		Title:        p.Title,
		Body:         p.Body,
		UserID:       p.UserID,
		OriginUserID: p.OriginUserID,
		State:        StatePending,
		Channel:      p.Channel,
		Priority:     p.Priority,
		CreatedAt:    p.CreatedAt,
		ExpiresAt:    p.ExpiresAt,
		Related:      p.Related,
		Metadata:     maps.Clone(p.Metadata),
		Attempts:     p.Attempts,
	}

	if err := n.Validate(); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Validate checks the record invariants.
func (n Notification) Validate() error {
	err := validator.Apply(
		validator.OneOf("type", n.Type, Types()...),
		validator.RequiredString("title", n.Title),
		validator.MaxRunes("title", n.Title, MaxTitleLength),
		validator.RequiredString("body", n.Body),
		validator.MaxRunes("body", n.Body, MaxBodyLength),
		validator.Positive("user_id", n.UserID),
		validator.OneOf("channel", n.Channel, Channels()...),
		validator.OneOf("priority", n.Priority, Priorities()...),
		validator.OneOf("state", n.State, States()...),
		validator.MinNum("attempts", n.Attempts, 0),
	)
	if err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}

// IsExpired reports whether the expiry timestamp is set and before now.
func (n Notification) IsExpired(now time.Time) bool {
	return n.ExpiresAt != nil && now.After(*n.ExpiresAt)
}

// IsRead reports whether the record reached the terminal READ state.
func (n Notification) IsRead() bool {
	return n.State == StateRead
}

// clone copies the record so the returned value shares no mutable map with n.
func (n Notification) clone() Notification {
	n.Metadata = maps.Clone(n.Metadata)
	return n
}
