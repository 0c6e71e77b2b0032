package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/adoptly/adoptly-backend/pkg/config"
	"github.com/adoptly/adoptly-backend/pkg/db"
	"github.com/adoptly/adoptly-backend/pkg/logger"
)

const DefaultDir = "pkg/migrate/migrations"

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	// Adoptly is Postgres today
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil

	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil

	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}

// MaybeRunDev applies pending migrations on boot when the auto-migrate
// feature flag is set. Production deploys run the migrate binary instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client) error {
	if cfg == nil || dbClient == nil {
		return fmt.Errorf("config and db client are required")
	}
	if !cfg.Features.AutoMigrate {
		return nil
	}
	if !cfg.App.IsDev() {
		logg.Warn(ctx, "auto-migrate requested outside dev, skipping")
		return nil
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("get sql db handle: %w", err)
	}

	logg.Info(ctx, "running dev migrations")
	return Run(ctx, sqlDB, DefaultDir, "up")
}

// CreateSQLMigration creates a new timestamped SQL migration file in dir.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return "", fmt.Errorf("goose create: %w", err)
	}
	return dir, nil
}

// ValidateDir checks the migration files in dir parse and order correctly.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if _, err := goose.CollectMigrations(dir, 0, goose.MaxVersion); err != nil {
		return fmt.Errorf("collect migrations: %w", err)
	}
	return nil
}
