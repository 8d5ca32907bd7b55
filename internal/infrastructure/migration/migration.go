// Package migration wraps golang-migrate for schema management.
package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"

	"github.com/girder-hq/girder/internal/shared/logger"
)

// Runner applies SQL migrations from a source directory.
type Runner struct {
	db     *gorm.DB
	source string
	logger logger.Interface
}

func NewRunner(db *gorm.DB, source string, logger logger.Interface) *Runner {
	return &Runner{db: db, source: source, logger: logger}
}

func (r *Runner) build() (*migrate.Migrate, error) {
	sqlDB, err := r.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	driver, err := mysql.WithInstance(sqlDB, &mysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+r.source, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations.
func (r *Runner) Up() error {
	m, err := r.build()
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			r.logger.Infow("schema already up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	r.logger.Infow("migrations applied", "version", version, "dirty", dirty)
	return nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down() error {
	m, err := r.build()
	if err != nil {
		return err
	}

	if err := m.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	r.logger.Infow("rolled back one migration")
	return nil
}

// Version reports the current schema version.
func (r *Runner) Version() (uint, bool, error) {
	m, err := r.build()
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}
