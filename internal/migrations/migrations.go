// Package migrations embeds the goose SQL migrations for the per-device
// replica database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
