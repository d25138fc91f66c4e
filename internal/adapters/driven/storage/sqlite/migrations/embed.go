// Package migrations embeds the SQL schema for the run history database.
package migrations

import "embed"

// FS contains the versioned migration files.
//
//go:embed *.sql
var FS embed.FS
