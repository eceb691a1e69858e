package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/riskhub/notify/pkg/notification"
	"github.com/riskhub/notify/pkg/pg"
)

const notificationColumns = `id, type, title, body, user_id, origin_user_id, state, channel, priority,
	created_at, sent_at, read_at, expires_at, attempts, last_error, last_attempt_at,
	risk_id, project_id, audit_id, finding_id, activity_id, incident_id, control_id, metadata`

// NotificationStore implements notification.Storage on PostgreSQL.
type NotificationStore struct {
	db DB
}

// NewNotificationStore creates a store over db.
func NewNotificationStore(db DB) *NotificationStore {
	return &NotificationStore{db: db}
}

var _ notification.Storage = (*NotificationStore)(nil)

func (s *NotificationStore) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if err := n.Validate(); err != nil {
		return notification.Notification{}, err
	}

	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO notifications (
			type, title, body, user_id, origin_user_id, state, channel, priority,
			created_at, sent_at, read_at, expires_at, attempts, last_error, last_attempt_at,
			risk_id, project_id, audit_id, finding_id, activity_id, incident_id, control_id, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23)
		RETURNING id`,
		string(n.Type), n.Title, n.Body, n.UserID, n.OriginUserID, string(n.State), string(n.Channel), string(n.Priority),
		n.CreatedAt, n.SentAt, n.ReadAt, n.ExpiresAt, n.Attempts, n.LastError, n.LastAttemptAt,
		n.Related.RiskID, n.Related.ProjectID, n.Related.AuditID, n.Related.FindingID,
		n.Related.ActivityID, n.Related.IncidentID, n.Related.ControlID, metadataArg(n.Metadata),
	).Scan(&id)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("insert notification: %w", err)
	}

	n.ID = &id
	return n, nil
}

func (s *NotificationStore) Get(ctx context.Context, id int64) (notification.Notification, error) {
	row := s.db.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if pg.IsNotFoundError(err) {
		return notification.Notification{}, notification.ErrNotFound
	}
	if err != nil {
		return notification.Notification{}, fmt.Errorf("get notification %d: %w", id, err)
	}
	return n, nil
}

// Update writes the mutable fields of n: state, timestamps, attempts and
// error. Content and targeting never change after creation.
func (s *NotificationStore) Update(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == nil {
		return notification.Notification{}, notification.ErrNotFound
	}
	if err := n.Validate(); err != nil {
		return notification.Notification{}, err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET
			state = $2, sent_at = $3, read_at = $4, attempts = $5,
			last_error = $6, last_attempt_at = $7, metadata = $8
		WHERE id = $1`,
		*n.ID, string(n.State), n.SentAt, n.ReadAt, n.Attempts,
		n.LastError, n.LastAttemptAt, metadataArg(n.Metadata),
	)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("update notification %d: %w", *n.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return n, nil
}

func (s *NotificationStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID int64, page notification.Page) ([]notification.Notification, error) {
	return s.Find(ctx, notification.Filter{UserID: &userID, Page: page})
}

func (s *NotificationStore) Unread(ctx context.Context, userID int64) ([]notification.Notification, error) {
	return s.Find(ctx, notification.Filter{UserID: &userID, UnreadOnly: true})
}

func (s *NotificationStore) Pending(ctx context.Context) ([]notification.Notification, error) {
	return s.retryable(ctx, notification.StatePending)
}

func (s *NotificationStore) Failed(ctx context.Context) ([]notification.Notification, error) {
	return s.retryable(ctx, notification.StateError)
}

func (s *NotificationStore) retryable(ctx context.Context, state notification.State) ([]notification.Notification, error) {
	return s.query(ctx, `SELECT `+notificationColumns+` FROM notifications
		WHERE state = $1 AND attempts < $2
		ORDER BY created_at, id`,
		string(state), notification.MaxAttempts,
	)
}

func (s *NotificationStore) Expired(ctx context.Context, now time.Time) ([]notification.Notification, error) {
	return s.query(ctx, `SELECT `+notificationColumns+` FROM notifications
		WHERE state = ANY($1) AND expires_at < $2
		ORDER BY created_at, id`,
		[]string{string(notification.StatePending), string(notification.StateError)}, now,
	)
}

// Find returns matching notifications, newest first.
func (s *NotificationStore) Find(ctx context.Context, f notification.Filter) ([]notification.Notification, error) {
	c := filterConditions(f)
	sql := `SELECT ` + notificationColumns + ` FROM notifications` + c.where() +
		` ORDER BY created_at DESC, id DESC`
	sql += c.paginate(f.Page)
	return s.query(ctx, sql, c.args...)
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET state = $2, read_at = $3
		WHERE user_id = $1 AND state = ANY($4)`,
		userID, string(notification.StateRead), at,
		[]string{string(notification.StatePending), string(notification.StateSent)},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all read for user %d: %w", userID, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *NotificationStore) DeleteOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1 AND created_at < $2`, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old notifications for user %d: %w", userID, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *NotificationStore) CountUnread(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND state <> $2`,
		userID, string(notification.StateRead),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread for user %d: %w", userID, err)
	}
	return n, nil
}

func (s *NotificationStore) StatsByType(ctx context.Context, userID int64) (map[notification.Type]notification.TypeStats, error) {
	rows, err := s.db.Query(ctx, `
		SELECT type,
			count(*),
			count(*) FILTER (WHERE state <> 'LEIDA'),
			count(*) FILTER (WHERE state = 'ENVIADA'),
			count(*) FILTER (WHERE state = 'LEIDA'),
			count(*) FILTER (WHERE state = 'ERROR'),
			count(*) FILTER (WHERE state = 'PENDIENTE')
		FROM notifications
		WHERE user_id = $1
		GROUP BY type`, userID)
	if err != nil {
		return nil, fmt.Errorf("stats for user %d: %w", userID, err)
	}
	defer rows.Close()

	stats := make(map[notification.Type]notification.TypeStats)
	for rows.Next() {
		var (
			typ string
			st  notification.TypeStats
		)
		if err := rows.Scan(&typ, &st.Total, &st.Unread, &st.Sent, &st.Read, &st.Failed, &st.Pending); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[notification.Type(typ)] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats for user %d: %w", userID, err)
	}
	return stats, nil
}

func (s *NotificationStore) query(ctx context.Context, sql string, args ...any) ([]notification.Notification, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	return out, nil
}

func scanNotification(row pgx.Row) (notification.Notification, error) {
	var (
		n                             notification.Notification
		id                            int64
		typ, state, channel, priority string
		metadata                      map[string]any
	)
	err := row.Scan(
		&id, &typ, &n.Title, &n.Body, &n.UserID, &n.OriginUserID, &state, &channel, &priority,
		&n.CreatedAt, &n.SentAt, &n.ReadAt, &n.ExpiresAt, &n.Attempts, &n.LastError, &n.LastAttemptAt,
		&n.Related.RiskID, &n.Related.ProjectID, &n.Related.AuditID, &n.Related.FindingID,
		&n.Related.ActivityID, &n.Related.IncidentID, &n.Related.ControlID, &metadata,
	)
	if err != nil {
		return notification.Notification{}, err
	}

	n.ID = &id
	n.Type = notification.Type(typ)
	n.State = notification.State(state)
	n.Channel = notification.Channel(channel)
	n.Priority = notification.Priority(priority)
	if len(metadata) > 0 {
		n.Metadata = metadata
	}
	return n, nil
}

// metadataArg stores empty metadata as SQL NULL.
func metadataArg(m map[string]any) any {
	if len(m) == 0 {
		return nil
	}
	return m
}
