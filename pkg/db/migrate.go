package db

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	migrations "github.com/doodlesbykumbi/rights-console/db"
)

// MigrationsTable is the table golang-migrate records the schema version in
const MigrationsTable = "rights_schema_migrations"

// WithMigrationsTable appends the migrations table parameter to a URL
func WithMigrationsTable(dbURL string) string {
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + MigrationsTable
	}
	return dbURL + "?x-migrations-table=" + MigrationsTable
}

func migrationsFS() (fs.FS, error) {
	sub, err := fs.Sub(migrations.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}
	return sub, nil
}

// NewMigrate creates a migrate instance over the embedded migrations
func NewMigrate(dbURL string) (*migrate.Migrate, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	source, err := migrationsFS()
	if err != nil {
		return nil, err
	}
	d, err := iofs.New(source, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", d, WithMigrationsTable(dbURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// MigrationFiles lists the embedded up migrations in order
func MigrationFiles() ([]string, error) {
	source, err := migrationsFS()
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// MigrateUp applies every pending migration. It returns the version before
// and after.
func MigrateUp(dbURL string) (from, to uint, err error) {
	m, err := NewMigrate(dbURL)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _, _ = m.Close() }()

	from, _, _ = m.Version()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return from, from, fmt.Errorf("migration failed: %w", err)
	}
	to, _, _ = m.Version()
	return from, to, nil
}

// MigrateDown rolls back the given number of migrations
func MigrateDown(dbURL string, steps int) (uint, error) {
	m, err := NewMigrate(dbURL)
	if err != nil {
		return 0, err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Steps(-steps); err != nil {
		return 0, fmt.Errorf("rollback failed: %w", err)
	}
	version, _, _ := m.Version()
	return version, nil
}

// MigrationStatus returns the current version, whether it is dirty, and
// ok=false when no migration was applied yet
func MigrationStatus(dbURL string) (version uint, dirty bool, ok bool, err error) {
	m, err := NewMigrate(dbURL)
	if err != nil {
		return 0, false, false, err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}
