package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/riskhub/notify/pkg/notification"
	"github.com/riskhub/notify/pkg/pg"
	"github.com/riskhub/notify/pkg/preference"
)

const preferenceColumns = `id, user_id, type, channel, active, interval_minutes,
	window_start, window_end, weekdays, min_priority`

// PreferenceStore implements preference.Storage on PostgreSQL.
type PreferenceStore struct {
	db DB
}

// NewPreferenceStore creates a store over db.
func NewPreferenceStore(db DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

var _ preference.Storage = (*PreferenceStore)(nil)

func (s *PreferenceStore) Create(ctx context.Context, p preference.Preference) (preference.Preference, error) {
	if err := p.Validate(); err != nil {
		return preference.Preference{}, err
	}
	return s.insert(ctx, s.db, p)
}

func (s *PreferenceStore) insert(ctx context.Context, db DB, p preference.Preference) (preference.Preference, error) {
	var id int64
	err := db.QueryRow(ctx, `
		INSERT INTO notification_preferences (
			user_id, type, channel, active, interval_minutes,
			window_start, window_end, weekdays, min_priority
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		preferenceArgs(p)...,
	).Scan(&id)
	if pg.IsDuplicateKeyError(err) {
		return preference.Preference{}, preference.ErrDuplicate
	}
	if err != nil {
		return preference.Preference{}, fmt.Errorf("insert preference: %w", err)
	}

	p.ID = &id
	return p, nil
}

func (s *PreferenceStore) Get(ctx context.Context, id int64) (preference.Preference, error) {
	row := s.db.QueryRow(ctx, `SELECT `+preferenceColumns+` FROM notification_preferences WHERE id = $1`, id)
	p, err := scanPreference(row)
	if pg.IsNotFoundError(err) {
		return preference.Preference{}, preference.ErrNotFound
	}
	if err != nil {
		return preference.Preference{}, fmt.Errorf("get preference %d: %w", id, err)
	}
	return p, nil
}

func (s *PreferenceStore) Update(ctx context.Context, p preference.Preference) (preference.Preference, error) {
	if p.ID == nil {
		return preference.Preference{}, preference.ErrNotFound
	}
	if err := p.Validate(); err != nil {
		return preference.Preference{}, err
	}

	args := append([]any{*p.ID}, preferenceArgs(p)...)
	tag, err := s.db.Exec(ctx, `
		UPDATE notification_preferences SET
			user_id = $2, type = $3, channel = $4, active = $5, interval_minutes = $6,
			window_start = $7, window_end = $8, weekdays = $9, min_priority = $10
		WHERE id = $1`, args...)
	if pg.IsDuplicateKeyError(err) {
		return preference.Preference{}, preference.ErrDuplicate
	}
	if err != nil {
		return preference.Preference{}, fmt.Errorf("update preference %d: %w", *p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return preference.Preference{}, preference.ErrNotFound
	}
	return p, nil
}

func (s *PreferenceStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM notification_preferences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete preference %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return preference.ErrNotFound
	}
	return nil
}

func (s *PreferenceStore) ByUser(ctx context.Context, userID int64) ([]preference.Preference, error) {
	return s.query(ctx, `WHERE user_id = $1`, userID)
}

func (s *PreferenceStore) ByUserAndType(ctx context.Context, userID int64, typ notification.Type) ([]preference.Preference, error) {
	return s.query(ctx, `WHERE user_id = $1 AND type = $2`, userID, string(typ))
}

func (s *PreferenceStore) Active(ctx context.Context, userID int64) ([]preference.Preference, error) {
	return s.query(ctx, `WHERE user_id = $1 AND active`, userID)
}

func (s *PreferenceStore) ByChannel(ctx context.Context, userID int64, ch notification.Channel) ([]preference.Preference, error) {
	return s.query(ctx, `WHERE user_id = $1 AND channel = $2`, userID, string(ch))
}

// CreateDefaults inserts the default set in one transaction. Triples the
// user already has are left untouched.
func (s *PreferenceStore) CreateDefaults(ctx context.Context, userID int64) ([]preference.Preference, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created := make([]preference.Preference, 0)
	for _, p := range preference.Defaults(userID) {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO notification_preferences (
				user_id, type, channel, active, interval_minutes,
				window_start, window_end, weekdays, min_priority
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (user_id, type, channel) DO NOTHING
			RETURNING id`,
			preferenceArgs(p)...,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert default preference: %w", err)
		}
		p.ID = &id
		created = append(created, p)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (s *PreferenceStore) SetActive(ctx context.Context, userID int64, active bool, types ...notification.Type) (int, error) {
	sql := `UPDATE notification_preferences SET active = $2 WHERE user_id = $1 AND active <> $2`
	args := []any{userID, active}
	if len(types) > 0 {
		sql += ` AND type = ANY($3)`
		args = append(args, strs(types))
	}

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("set active for user %d: %w", userID, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PreferenceStore) Exists(ctx context.Context, userID int64, typ notification.Type, ch notification.Channel) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notification_preferences
			WHERE user_id = $1 AND type = $2 AND channel = $3
		)`, userID, string(typ), string(ch)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("preference exists: %w", err)
	}
	return exists, nil
}

func (s *PreferenceStore) UserIDsWith(ctx context.Context, typ notification.Type, ch notification.Channel) ([]int64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT user_id FROM notification_preferences
		WHERE type = $1 AND channel = $2 AND active
		ORDER BY user_id`, string(typ), string(ch))
	if err != nil {
		return nil, fmt.Errorf("users with preference: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("users with preference: %w", err)
	}
	return ids, nil
}

// Deliverable loads the user's preferences for typ and applies the window
// and priority rules in Go, so they match Preference.CanDeliver exactly.
func (s *PreferenceStore) Deliverable(ctx context.Context, userID int64, typ notification.Type, priority notification.Priority, at time.Time) ([]preference.Preference, error) {
	prefs, err := s.ByUserAndType(ctx, userID, typ)
	if err != nil {
		return nil, err
	}
	return preference.FilterDeliverable(prefs, priority, at), nil
}

func (s *PreferenceStore) query(ctx context.Context, where string, args ...any) ([]preference.Preference, error) {
	rows, err := s.db.Query(ctx, `SELECT `+preferenceColumns+` FROM notification_preferences `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	out := make([]preference.Preference, 0)
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	return out, nil
}

func preferenceArgs(p preference.Preference) []any {
	var weekdays []int32
	if len(p.Weekdays) > 0 {
		weekdays = make([]int32, len(p.Weekdays))
		for i, d := range p.Weekdays {
			weekdays[i] = int32(d)
		}
	}

	var minPriority *string
	if p.MinPriority != nil {
		v := string(*p.MinPriority)
		minPriority = &v
	}

	return []any{
		p.UserID, string(p.Type), string(p.Channel), p.Active, p.IntervalMinutes,
		p.WindowStart, p.WindowEnd, weekdays, minPriority,
	}
}

func scanPreference(row pgx.Row) (preference.Preference, error) {
	var (
		p            preference.Preference
		id           int64
		typ, channel string
		weekdays     []int32
		minPriority  *string
	)
	err := row.Scan(
		&id, &p.UserID, &typ, &channel, &p.Active, &p.IntervalMinutes,
		&p.WindowStart, &p.WindowEnd, &weekdays, &minPriority,
	)
	if err != nil {
		return preference.Preference{}, err
	}

	p.ID = &id
	p.Type = notification.Type(typ)
	p.Channel = notification.Channel(channel)
	if len(weekdays) > 0 {
		p.Weekdays = make([]int, len(weekdays))
		for i, d := range weekdays {
			p.Weekdays[i] = int(d)
		}
	}
	if minPriority != nil {
		floor := notification.Priority(*minPriority)
		p.MinPriority = &floor
	}
	return p, nil
}
