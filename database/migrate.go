package database

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus describes the schema version currently applied
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

// migrationURLFromEnv reads only the database variables so migrations can run
// without the admin token or chain settings the server needs.
func migrationURLFromEnv() (string, error) {
	baseURL := os.Getenv("DATABASE_URL")
	if baseURL == "" {
		return "", errors.New("DATABASE_URL is required for migrations")
	}
	return ConstructDatabaseURL(baseURL, os.Getenv("DATABASE_NAME")), nil
}

// MigrateUp applies all pending migrations to the database named by the environment
func MigrateUp() error {
	databaseURL, err := migrationURLFromEnv()
	if err != nil {
		return err
	}
	return RunMigrationsWithURL(databaseURL)
}

// MigrateDown rolls back stepsStr migrations
func MigrateDown(stepsStr string) error {
	steps, err := strconv.Atoi(stepsStr)
	if err != nil || steps <= 0 {
		return fmt.Errorf("invalid steps value %q: must be a positive integer", stepsStr)
	}

	databaseURL, err := migrationURLFromEnv()
	if err != nil {
		return err
	}

	m, err := getMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Steps(-steps)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("No migrations to roll back")
		return nil
	case err != nil:
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.WithField("version", version).Info("Rolled back migrations")
	return nil
}

// MigrateStatus logs and returns the applied schema version
func MigrateStatus() (*MigrationStatus, error) {
	databaseURL, err := migrationURLFromEnv()
	if err != nil {
		return nil, err
	}

	m, err := getMigrate(databaseURL)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("No migrations have been applied yet")
		return &MigrationStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}

	status := &MigrationStatus{Version: version, Dirty: dirty, Applied: true}
	log.WithFields(log.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("Current migration version")
	return status, nil
}

// RunMigrationsWithURL applies all pending migrations against databaseURL.
// Test containers use it with their generated connection strings.
func RunMigrationsWithURL(databaseURL string) error {
	m, err := getMigrate(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug("No new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.WithField("version", version).Info("Migrated schema")
	return nil
}

func getMigrate(databaseURL string) (*migrate.Migrate, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	db := stdlib.OpenDB(*poolConfig.ConnConfig)

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
