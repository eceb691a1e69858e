// Package pg bootstraps the PostgreSQL side of the notification service on
// top of pgx/v5.
//
// Connect opens a *pgxpool.Pool from Config (filled from the environment by
// caarlos0/env), pinging it and retrying while the database comes up.
// Migrate applies goose migrations, normally the ones embedded by pgstore,
// through the same pool. Healthcheck returns a ping probe.
//
// The Is*Error helpers classify pgx and *pgconn.PgError failures so stores
// can map them to their own sentinel errors:
//
//	if pg.IsNotFoundError(err) {
//	    return notification.Notification{}, notification.ErrNotFound
//	}
package pg
