// Package migrations embeds the goose SQL migrations for the record store
// schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
