// Package migrations embeds the schema of the sweep result store.
package migrations

import "embed"

// FS holds the ordered .sql files.
//
//go:embed *.sql
var FS embed.FS
