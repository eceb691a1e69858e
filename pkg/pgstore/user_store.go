package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskhub/notify/pkg/delivery"
	"github.com/riskhub/notify/pkg/notification"
)

// DefaultUserQuery reads the platform's users table.
const DefaultUserQuery = `SELECT id, COALESCE(email, '') AS email, COALESCE(name, '') AS name FROM users WHERE id = $1`

// UserStore resolves delivery targets from the platform's user directory.
// The directory may live outside the notification schema, so it is read
// through database/sql with a configurable query.
type UserStore struct {
	db    *sqlx.DB
	query string
}

// UserStoreOption configures a UserStore.
type UserStoreOption func(*UserStore)

// WithUserQuery replaces DefaultUserQuery. The query takes the id as $1 and
// returns id, email and name columns.
func WithUserQuery(q string) UserStoreOption {
	return func(s *UserStore) {
		if q != "" {
			s.query = q
		}
	}
}

// NewUserStore creates a user directory over db.
func NewUserStore(db *sqlx.DB, opts ...UserStoreOption) *UserStore {
	s := &UserStore{db: db, query: DefaultUserQuery}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ delivery.UserLookup = (*UserStore)(nil)

type userRow struct {
	ID    int64  `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
}

func (s *UserStore) GetUser(ctx context.Context, id int64) (delivery.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, s.query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return delivery.User{}, fmt.Errorf("%w: user %d", notification.ErrNotFound, id)
		}
		return delivery.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return delivery.User{ID: row.ID, Email: row.Email, Name: row.Name}, nil
}
