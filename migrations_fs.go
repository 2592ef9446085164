package exolix

import (
	"embed"
	"io/fs"
)

// migrationsFS holds the transaction ledger schema, with the SQLite variant
// under data/sql/migrations/sqlite.
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded ledger migration tree.
func GetMigrationsFS() fs.FS {
	return migrationsFS
}
