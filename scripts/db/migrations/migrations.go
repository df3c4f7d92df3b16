// Package migrations embeds the SQL migration files so the binary can
// bring its own schema up without external assets.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
