package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shardsquad/shardstats/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationResult describes the outcome of a migration run.
type MigrationResult struct {
	From    uint
	To      uint
	Changed bool
}

// MigrateHistory runs database migrations for the history store and reports the outcome.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func MigrateHistory(backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	if backend == schema.NoneBackend {
		return fmt.Errorf("migrations are not supported for none backend")
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	res, err := runMigrations(db, backend, targetVersion)
	if err != nil {
		return err
	}

	switch {
	case !res.Changed:
		fmt.Printf("No migration needed. Database is already at version %d\n", res.To)
	default:
		fmt.Printf("Successfully migrated from version %d to version %d\n", res.From, res.To)
	}
	return nil
}

// runMigrations applies the embedded migrations for backend on db.
// The migrate instance is not closed since that would close db.
func runMigrations(db *sql.DB, backend schema.DatabaseBackend, targetVersion int) (MigrationResult, error) {
	var res MigrationResult

	driver, err := migrationDriver(db, backend)
	if err != nil {
		return res, err
	}

	sub, err := fs.Sub(migrationsFS, path.Join("migrations", string(backend)))
	if err != nil {
		return res, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(sub, ".")
	if err != nil {
		return res, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, string(backend), driver)
	if err != nil {
		return res, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return res, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return res, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", current)
	}
	res.From = current

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return res, fmt.Errorf("failed to migrate history store: %w", err)
	}
	res.Changed = err == nil

	to, _, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return res, fmt.Errorf("failed to get migration version: %w", verr)
	}
	res.To = to
	return res, nil
}

// migrationDriver wraps db in the golang-migrate driver for backend.
func migrationDriver(db *sql.DB, backend schema.DatabaseBackend) (database.Driver, error) {
	var (
		driver database.Driver
		err    error
	)
	switch backend {
	case schema.SQLiteBackend:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case schema.MySQLBackend:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}
	return driver, nil
}
