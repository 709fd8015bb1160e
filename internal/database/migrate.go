package database

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateURL builds the database URL for the migrator.  Unlike the pool
// DSN it must enable multiStatements: each migration file holds several
// semicolon-separated statements and the driver executes the whole file
// in a single call.
func migrateURL(user, pass, host, port, name string) string {
	return "mysql://" + DSN(user, pass, host, port, name) + "&multiStatements=true"
}

// RunMigrations applies all pending SQL migrations.  The schema ships
// embedded in the binary so a fresh database only needs connectivity.
// Already being at the latest version is not an error.
func RunMigrations(user, pass, host, port, name string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(user, pass, host, port, name))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
