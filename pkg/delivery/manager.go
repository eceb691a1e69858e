package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riskhub/notify/pkg/email"
	"github.com/riskhub/notify/pkg/logger"
	"github.com/riskhub/notify/pkg/notification"
	"github.com/riskhub/notify/pkg/preference"
	"github.com/riskhub/notify/pkg/templates"
	"github.com/riskhub/notify/pkg/validator"
)

// Manager orchestrates rendering, channel resolution, storage and delivery
// of notifications.
type Manager struct {
	notifications notification.Storage
	preferences   preference.Storage
	users         UserLookup
	sender        email.Sender
	renderer      *templates.Renderer
	logger        *slog.Logger
	now           func() time.Time
	location      *time.Location

	batchSize    int
	batchPause   time.Duration
	dedupWindow  time.Duration
	retryBackoff time.Duration
	supportEmail string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for the Manager.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces time.Now. Tests use it to pin windows and weekdays.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRenderer sets the template renderer.
func WithRenderer(r *templates.Renderer) Option {
	return func(m *Manager) {
		if r != nil {
			m.renderer = r
		}
	}
}

// WithLocation sets the time zone preference windows are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) {
		if loc != nil {
			m.location = loc
		}
	}
}

// WithBatchSize sets how many pending records a sweep handles per batch.
func WithBatchSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// WithBatchPause sets the pause between sweep batches.
func WithBatchPause(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.batchPause = d
		}
	}
}

// WithDedupWindow sets how far back duplicate sends are looked for.
func WithDedupWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.dedupWindow = d
		}
	}
}

// WithRetryBackoff sets the base delay between retries. The n-th retry waits
// backoff * 2^(n-1) after the last attempt.
func WithRetryBackoff(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.retryBackoff = d
		}
	}
}

// WithSupportEmail sets the contact address printed in email footers.
func WithSupportEmail(addr string) Option {
	return func(m *Manager) {
		m.supportEmail = addr
	}
}

// WithConfig applies the numeric settings of cfg. Timezone and language need
// resolving and go through WithLocation and WithRenderer.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		WithBatchSize(cfg.BatchSize)(m)
		WithBatchPause(cfg.BatchPause)(m)
		WithDedupWindow(cfg.DedupWindow)(m)
		WithRetryBackoff(cfg.RetryBackoff)(m)
		if cfg.SupportEmail != "" {
			m.supportEmail = cfg.SupportEmail
		}
	}
}

// NewManager creates a Manager. sender may be nil, in which case EMAIL
// deliveries fail with ErrNoEmailTransport.
func NewManager(
	notifications notification.Storage,
	preferences preference.Storage,
	users UserLookup,
	sender email.Sender,
	opts ...Option,
) *Manager {
	def := DefaultConfig()
	m := &Manager{
		notifications: notifications,
		preferences:   preferences,
		users:         users,
		sender:        sender,
		renderer:      templates.NewRenderer(),
		logger:        slog.Default(),
		now:           time.Now,
		location:      time.UTC,
		batchSize:     def.BatchSize,
		batchPause:    def.BatchPause,
		dedupWindow:   def.DedupWindow,
		retryBackoff:  def.RetryBackoff,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With(logger.Component("delivery"))
	return m
}

// SendRequest describes one domain event to notify a user about.
type SendRequest struct {
	Type         notification.Type
	UserID       int64
	OriginUserID *int64
	// Data fills the template placeholders.
	Data     map[string]any
	Related  notification.Related
	Metadata map[string]any
	// Priority overrides the template priority.
	Priority *notification.Priority
	// Force skips deduplication and preferences; the template channel is used.
	Force bool
	// Channel, when set, is the only channel used.
	Channel *notification.Channel
}

// Validate checks the request before any lookup.
func (r SendRequest) Validate() error {
	rules := []validator.Rule{
		validator.OneOf("type", r.Type, notification.Types()...),
		validator.Positive("user_id", r.UserID),
	}
	if r.Priority != nil {
		rules = append(rules, validator.OneOf("priority", *r.Priority, notification.Priorities()...))
	}
	if r.Channel != nil {
		rules = append(rules, validator.OneOf("channel", *r.Channel, notification.Channels()...))
	}
	if err := validator.Apply(rules...); err != nil {
		return errors.Join(notification.ErrValidation, err)
	}
	return nil
}

// SendResult reports the outcome of Send. Partial success is normal: some
// channels may be delivered while others fail.
type SendResult struct {
	Created []notification.Notification
	Sent    int
	Errors  []string
}

// Send notifies a user about an event. Precondition failures (invalid
// request, unknown user, failing preference lookup) are returned as errors
// before anything is stored. Per-channel failures are collected in the
// result and never abort the other channels.
func (m *Manager) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	var res SendResult

	if err := req.Validate(); err != nil {
		return res, err
	}

	user, err := m.lookupUser(ctx, req.UserID)
	if err != nil {
		return res, err
	}

	now := m.now()
	base, err := m.build(req, now)
	if err != nil {
		return res, err
	}

	if !req.Force && m.isDuplicate(ctx, base, now) {
		m.logger.LogAttrs(ctx, slog.LevelInfo, "duplicate notification suppressed",
			logger.UserID(req.UserID),
			logger.NotificationType(req.Type),
		)
		res.Errors = append(res.Errors, fmt.Sprintf(
			"duplicate %s notification for user %d within the last %s; not sent",
			req.Type, req.UserID, m.dedupWindow))
		return res, nil
	}

	channels, err := m.resolve(ctx, req, base, now)
	if err != nil {
		return res, err
	}
	if len(channels) == 0 {
		m.logger.LogAttrs(ctx, slog.LevelDebug, "no channel resolved",
			logger.UserID(req.UserID),
			logger.NotificationType(req.Type),
		)
		return res, nil
	}

	for _, ch := range channels {
		candidate := base
		candidate.Channel = ch

		// Persist first so the sweep can pick the record up if delivery fails.
		stored, err := m.notifications.Create(ctx, candidate)
		if err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to store notification",
				logger.UserID(req.UserID),
				logger.Channel(ch),
				logger.Error(err),
			)
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", ch, errors.Join(notification.ErrDependency, err)))
			continue
		}

		updated, err := m.deliverAndRecord(ctx, stored, user)
		res.Created = append(res.Created, updated)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", ch, err))
			continue
		}
		res.Sent++
	}

	return res, nil
}

// build renders the template and assembles the PENDING base notification.
// Its channel is the template default until resolution assigns one.
func (m *Manager) build(req SendRequest, now time.Time) (notification.Notification, error) {
	content, err := m.renderer.Render(req.Type, req.Data, now)
	if err != nil {
		return notification.Notification{}, errors.Join(notification.ErrValidation, err)
	}

	priority := content.Priority
	if req.Priority != nil {
		priority = *req.Priority
	}

	return notification.New(notification.Params{
		Type:         req.Type,
		Title:        content.Title,
		Body:         content.Body,
		UserID:       req.UserID,
		OriginUserID: req.OriginUserID,
		Channel:      content.Channel,
		Priority:     priority,
		CreatedAt:    now,
		ExpiresAt:    content.ExpiresAt,
		Related:      req.Related,
		Metadata:     req.Metadata,
	})
}

func (m *Manager) resolve(ctx context.Context, req SendRequest, base notification.Notification, now time.Time) ([]notification.Channel, error) {
	r := Resolution{
		Priority:       base.Priority,
		Channel:        req.Channel,
		Force:          req.Force,
		DefaultChannel: base.Channel,
		At:             now.In(m.location),
	}

	if r.Channel == nil && !r.Force {
		prefs, err := m.preferences.ByUserAndType(ctx, req.UserID, req.Type)
		if err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to load preferences",
				logger.UserID(req.UserID),
				logger.NotificationType(req.Type),
				logger.Error(err),
			)
			return nil, errors.Join(notification.ErrDependency, err)
		}
		r.Preferences = prefs
	}

	return ResolveChannels(r), nil
}

func (m *Manager) lookupUser(ctx context.Context, id int64) (User, error) {
	user, err := m.users.GetUser(ctx, id)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, notification.ErrNotFound) {
		return User{}, fmt.Errorf("%w: user %d", notification.ErrNotFound, id)
	}
	return User{}, errors.Join(notification.ErrDependency, err)
}

// Get returns one notification.
func (m *Manager) Get(ctx context.Context, id int64) (notification.Notification, error) {
	return m.notifications.Get(ctx, id)
}

// List returns notifications matching f.
func (m *Manager) List(ctx context.Context, f notification.Filter) ([]notification.Notification, error) {
	return m.notifications.Find(ctx, f)
}

func (m *Manager) CountUnread(ctx context.Context, userID int64) (int, error) {
	return m.notifications.CountUnread(ctx, userID)
}

// Stats returns the user's per-type counters.
func (m *Manager) Stats(ctx context.Context, userID int64) (map[notification.Type]notification.TypeStats, error) {
	return m.notifications.StatsByType(ctx, userID)
}

// MarkRead moves the user's notifications to READ. With no ids every
// non-terminal notification of the user is marked. Ids that do not exist,
// belong to another user or cannot be read from their state are skipped.
// It returns how many records changed.
func (m *Manager) MarkRead(ctx context.Context, userID int64, ids ...int64) (int, error) {
	now := m.now()
	if len(ids) == 0 {
		n, err := m.notifications.MarkAllRead(ctx, userID, now)
		if err != nil {
			return 0, errors.Join(notification.ErrDependency, err)
		}
		return n, nil
	}

	changed := 0
	for _, id := range ids {
		n, err := m.notifications.Get(ctx, id)
		if errors.Is(err, notification.ErrNotFound) {
			continue
		}
		if err != nil {
			return changed, errors.Join(notification.ErrDependency, err)
		}
		if n.UserID != userID {
			continue
		}

		read, err := n.MarkRead(now)
		if err != nil {
			continue
		}
		if _, err := m.notifications.Update(ctx, read); err != nil {
			return changed, errors.Join(notification.ErrDependency, err)
		}
		changed++
	}
	return changed, nil
}

// Cleanup deletes the user's notifications older than days.
func (m *Manager) Cleanup(ctx context.Context, userID int64, days int) (int, error) {
	if err := validator.Apply(
		validator.Positive("user_id", userID),
		validator.Positive("days", days),
	); err != nil {
		return 0, errors.Join(notification.ErrValidation, err)
	}

	cutoff := m.now().AddDate(0, 0, -days)
	deleted, err := m.notifications.DeleteOlderThan(ctx, userID, cutoff)
	if err != nil {
		return 0, errors.Join(notification.ErrDependency, err)
	}

	m.logger.LogAttrs(ctx, slog.LevelInfo, "old notifications deleted",
		logger.UserID(userID),
		logger.Count("deleted", deleted),
	)
	return deleted, nil
}

// EnsureDefaultPreferences creates the default preference set for a user who
// has none. It returns the created preferences, empty when the user already
// had some.
func (m *Manager) EnsureDefaultPreferences(ctx context.Context, userID int64) ([]preference.Preference, error) {
	existing, err := m.preferences.ByUser(ctx, userID)
	if err != nil {
		return nil, errors.Join(notification.ErrDependency, err)
	}
	if len(existing) > 0 {
		return []preference.Preference{}, nil
	}

	created, err := m.preferences.CreateDefaults(ctx, userID)
	if err != nil {
		return nil, errors.Join(notification.ErrDependency, err)
	}
	return created, nil
}
