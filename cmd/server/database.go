package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/realitycheck-api/internal/config"
	"github.com/phrazzld/realitycheck-api/internal/platform/migrate"
	"github.com/phrazzld/realitycheck-api/internal/platform/postgres"
	"github.com/phrazzld/realitycheck-api/internal/platform/sqlite"
	"github.com/phrazzld/realitycheck-api/internal/platform/sqlstore"
	"github.com/pressly/goose/v3"
)

// setupAppDatabase opens the configured database. Both drivers ping before
// returning.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = postgres.Open(ctx, cfg.URL, logger)
	case config.DriverSQLite:
		db, err = sqlite.Open(ctx, cfg.URL, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// storeDialect returns the SQL dialect the stores use for driver.
func storeDialect(driver string) sqlstore.Dialect {
	if driver == config.DriverPostgres {
		return postgres.Dialect
	}
	return sqlite.Dialect
}

// newMigrator returns a migrator over the embedded migrations for driver.
func newMigrator(driver string, db *sql.DB, logger *slog.Logger) (*migrate.Migrator, error) {
	if driver == config.DriverPostgres {
		return migrate.New(goose.DialectPostgres, db, postgres.Migrations(), logger)
	}
	return migrate.New(goose.DialectSQLite3, db, sqlite.Migrations(), logger)
}
