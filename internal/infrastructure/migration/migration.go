// Package migration wraps goose schema migrations for the hhbot database.
package migration

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/hhbot/dispatcher/internal/shared/logger"
)

// GooseStrategy runs SQL migration scripts under scriptsPath with goose.
type GooseStrategy struct {
	scriptsPath string
	logger      logger.Interface
}

// NewGooseStrategy creates a goose-backed migration strategy.
func NewGooseStrategy(scriptsPath string, log logger.Interface) *GooseStrategy {
	return &GooseStrategy{scriptsPath: scriptsPath, logger: log}
}

func (s *GooseStrategy) db(sqlDB *sql.DB) error {
	return goose.SetDialect("mysql")
}

// Migrate applies all pending migrations.
func (s *GooseStrategy) Migrate(sqlDB *sql.DB) error {
	if err := s.db(sqlDB); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	current, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	s.logger.Infow("current migration version", "version", current)

	if err := goose.Up(sqlDB, s.scriptsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	final, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}
	s.logger.Infow("migrations applied", "from_version", current, "to_version", final)

	return nil
}

// MigrateDown rolls back the given number of migration steps.
func (s *GooseStrategy) MigrateDown(sqlDB *sql.DB, steps int) error {
	if err := s.db(sqlDB); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	for i := 0; i < steps; i++ {
		if err := goose.Down(sqlDB, s.scriptsPath); err != nil {
			return fmt.Errorf("failed to run down migration: %w", err)
		}
	}
	return nil
}

// GetVersion returns the current applied migration version.
func (s *GooseStrategy) GetVersion(sqlDB *sql.DB) (int64, error) {
	if err := s.db(sqlDB); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.GetDBVersion(sqlDB)
}

// Status prints migration status to stdout via goose.
func (s *GooseStrategy) Status(sqlDB *sql.DB) error {
	if err := s.db(sqlDB); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.Status(sqlDB, s.scriptsPath)
}

// Create scaffolds a new empty SQL migration file.
func (s *GooseStrategy) Create(name string) error {
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Create(nil, s.scriptsPath, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}
	s.logger.Infow("migration created", "name", name)
	return nil
}
