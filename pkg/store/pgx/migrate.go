package pgx

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/graphbio/bel/pkg/logger"
	"github.com/graphbio/bel/pkg/store"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
)

// Migrate brings the schema up to date from the embedded migration
// files. Safe to run on every startup; an up-to-date schema is a
// no-op.
func Migrate(databaseURL string) error {
	source, err := iofs.New(store.MigrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return err
	}
	logger.Debug("[Store][Migrate] Schema ready", "version", version, "dirty", dirty)
	return nil
}
