// Package sqlite persists stage run history in SQLite.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation, so the
// binary builds without CGO on every platform the automation host runs on.
//
// # Schema
//
// Versioned migrations live in migrations/ as .up.sql and .down.sql pairs
// and are applied on open. The applied version is tracked in
// schema_migrations.
//
// # Data Location
//
// By default the database is stored at ~/.macrorun/data/history.db
package sqlite
