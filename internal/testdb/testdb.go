// Package testdb provides migrated databases for tests.
//
// SQLite databases are in memory and private to the calling test.
// PostgreSQL is used only when REALITYCHECK_TEST_DATABASE_URL is set; each
// test then gets a schema of its own, dropped when the test ends.
package testdb

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/realitycheck-api/internal/config"
	"github.com/phrazzld/realitycheck-api/internal/platform/migrate"
	"github.com/phrazzld/realitycheck-api/internal/platform/postgres"
	"github.com/phrazzld/realitycheck-api/internal/platform/sqlite"
	"github.com/phrazzld/realitycheck-api/internal/platform/sqlstore"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// DatabaseURLEnv names the PostgreSQL connection string used by Postgres.
const DatabaseURLEnv = "REALITYCHECK_TEST_DATABASE_URL"

// DB is a migrated test database and the store dialect that matches it.
type DB struct {
	*sql.DB
	Driver  string
	Dialect sqlstore.Dialect
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// SQLite returns a migrated in-memory SQLite database closed at test cleanup.
func SQLite(t testing.TB) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, ":memory:", quiet)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := migrate.New(goose.DialectSQLite3, db, sqlite.Migrations(), quiet)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))

	return &DB{DB: db, Driver: config.DriverSQLite, Dialect: sqlite.Dialect}
}

// Postgres returns a migrated PostgreSQL database confined to a fresh schema.
// The test is skipped when DatabaseURLEnv is unset.
func Postgres(t testing.TB) *DB {
	t.Helper()
	dsn := os.Getenv(DatabaseURLEnv)
	if dsn == "" {
		t.Skipf("%s not set; skipping PostgreSQL test", DatabaseURLEnv)
	}
	ctx := context.Background()

	admin, err := postgres.Open(ctx, dsn, quiet)
	require.NoError(t, err)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		_ = admin.Close()
	})

	db, err := postgres.Open(ctx, withSearchPath(dsn, schema), quiet)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := migrate.New(goose.DialectPostgres, db, postgres.Migrations(), quiet)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))

	return &DB{DB: db, Driver: config.DriverPostgres, Dialect: postgres.Dialect}
}

// Each runs fn once per available database as subtests named after the driver.
func Each(t *testing.T, fn func(t *testing.T, db *DB)) {
	t.Helper()
	t.Run(config.DriverSQLite, func(t *testing.T) { fn(t, SQLite(t)) })
	t.Run(config.DriverPostgres, func(t *testing.T) { fn(t, Postgres(t)) })
}

// withSearchPath sets the search_path run-time parameter on a URL or
// key/value connection string.
func withSearchPath(dsn, schema string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return dsn + " search_path=" + schema
}
