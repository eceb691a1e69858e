// Package pgstore holds the PostgreSQL implementations of the notification
// and preference stores, and the user directory lookup.
//
// NotificationStore and PreferenceStore run on pgx through the DB interface,
// which *pgxpool.Pool and pgx.Tx both satisfy. Find translates
// notification.Filter into SQL with the same semantics as Filter.Match, so
// the in-memory and Postgres backends are interchangeable. Preference window
// and priority rules are evaluated in Go after loading, never in SQL.
//
// UserStore reads the platform's users table through sqlx.
//
// The schema ships as goose migrations:
//
//	err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations(), logger)
package pgstore
