// Package migrations embeds the schema migration files for the
// embedded directory so they compile into the binary.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
