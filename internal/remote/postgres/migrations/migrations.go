// Package migrations embeds the goose migrations for the remote documents schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
