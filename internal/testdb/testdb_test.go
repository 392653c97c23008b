package testdb

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/realitycheck-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteIsMigratedAndPrivate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	a := SQLite(t)
	b := SQLite(t)
	assert.Equal(t, config.DriverSQLite, a.Driver)

	_, err := a.ExecContext(ctx, "INSERT INTO decision_groups (name, description, color, created_at, updated_at) VALUES ('x', '', '#000000', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)")
	require.NoError(t, err)

	count := func(db *DB) int {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decision_groups").Scan(&n))
		return n
	}
	assert.Equal(t, 1, count(a))
	assert.Equal(t, 0, count(b))
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := SQLite(t)

	WithTx(t, db.DB, func(tx *sql.Tx) {
		_, err := tx.ExecContext(ctx, "INSERT INTO decision_groups (name, description, color, created_at, updated_at) VALUES ('x', '', '#000000', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)")
		require.NoError(t, err)
	})

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decision_groups").Scan(&n))
	assert.Zero(t, n)
}

func TestWithSearchPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "postgres://u:p@localhost:5432/db?search_path=s1&sslmode=disable",
		withSearchPath("postgres://u:p@localhost:5432/db?sslmode=disable", "s1"))
	assert.Equal(t, "host=localhost dbname=db search_path=s1",
		withSearchPath("host=localhost dbname=db", "s1"))
}
