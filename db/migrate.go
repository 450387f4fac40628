package db

import (
	"embed"
	"errors"
	"fmt"
	"go-account-api/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func newMigrator(dsn string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("cannot open embedded migrations: %w", err)
	}
	mig, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("cannot create migrate instance: %w", err)
	}
	return mig, nil
}

// MigrateUp applies every pending migration. No pending migrations is not an error.
func MigrateUp(dsn string) error {
	mig, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrate up: %w", err)
	}
	logger.Log.Info("Database migrations applied")
	return nil
}

// MigrateDown rolls every migration back.
func MigrateDown(dsn string) error {
	mig, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err := mig.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrate down: %w", err)
	}
	logger.Log.Warn("Database migrations rolled back")
	return nil
}
