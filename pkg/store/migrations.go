package store

import "embed"

// MigrationFiles ships the schema migrations inside the binary, so
// deployments never need a migrations directory on disk. The pgx
// subpackage runs them through golang-migrate's iofs source.
//
//go:embed migrations/*.sql
var MigrationFiles embed.FS
