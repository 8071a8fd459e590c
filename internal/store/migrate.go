package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate runs all pending migrations for the backend against db.
// The migrator is not closed, since closing it would close db.
func Migrate(db *sql.DB, backend Backend) error {
	source, err := iofs.New(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	var driver database.Driver
	switch backend {
	case BackendSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case BackendPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case BackendMySQL:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	default:
		return fmt.Errorf("migrations are not supported for backend %q", backend)
	}
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(backend), driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if _, dirty, err := m.Version(); err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	} else if dirty {
		return fmt.Errorf("database is in a dirty migration state; fix manually or force a version")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
