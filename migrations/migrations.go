// Package migrations embeds the per-driver schema migrations.
package migrations

import "embed"

// Embedded migration files bundled at compile time, one directory per
// driver. Files apply in lexical order.
//
//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
