// Package migrations embeds the SQL schema migrations for both storage
// dialects. Store implementations mount the sub-filesystem for their
// dialect via fs.Sub.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
