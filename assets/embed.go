// Package assets embeds the SQL migrations applied by internal/db.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed sql/*.sql
var sqlFS embed.FS

// Migrations returns the migration files rooted at their directory, so names
// read "001_snapshot_blobs.sql" rather than "sql/001_snapshot_blobs.sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(sqlFS, "sql")
	if err != nil {
		panic(err) // embed pattern guarantees the directory
	}
	return sub
}
