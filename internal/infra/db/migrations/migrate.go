// Package migrations embeds and applies the SQL schema for the history backends.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Dialect names a migration directory.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

//go:embed mysql/*.sql postgres/*.sql
var migrationsFS embed.FS

func newMigrator(d Dialect, databaseURL string) (*migrate.Migrate, error) {
	if d != MySQL && d != Postgres {
		return nil, fmt.Errorf("unknown migration dialect %q", d)
	}
	source, err := iofs.New(migrationsFS, string(d))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations. Already up to date is not an error.
func Up(d Dialect, databaseURL string) error {
	m, err := newMigrator(d, databaseURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Down rolls back all migrations.
func Down(d Dialect, databaseURL string) error {
	m, err := newMigrator(d, databaseURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// Version reports the applied schema version.
func Version(d Dialect, databaseURL string) (uint, bool, error) {
	m, err := newMigrator(d, databaseURL)
	if err != nil {
		return 0, false, err
	}
	defer func() { _, _ = m.Close() }()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
