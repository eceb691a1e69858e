// Package preference holds per-user delivery rules.
//
// A Preference ties a (user, notification type, channel) triple to the
// conditions under which delivery is allowed: an active flag, a minimum
// priority, an inclusive "HH:MM" time window and a set of weekdays.
// CanDeliver evaluates those conditions for a priority and an instant and is
// a pure function of its arguments.
//
// Defaults returns the catalog assigned to new users. Storage is the
// persistence contract; MemoryStorage implements it for tests and pkg/pgstore
// for PostgreSQL.
package preference
