// Package migrations embeds the SQL migration files for the profile
// index database.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
// Applied in lexical order by the store on open.
//
//go:embed *.sql
var FS embed.FS
