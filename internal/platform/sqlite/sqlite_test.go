package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/phrazzld/realitycheck-api/internal/platform/migrate"
	"github.com/phrazzld/realitycheck-api/internal/platform/sqlite"
	"github.com/phrazzld/realitycheck-api/internal/store"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMigrated(t *testing.T) (*sql.DB, *migrate.Migrator) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := migrate.New(goose.DialectSQLite3, db, sqlite.Migrations(), nil)
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))
	return db, m
}

func TestMigrations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, m := openMigrated(t)

	version, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.True(t, s.Applied, s.Path)
	}

	require.NoError(t, m.Down(ctx))
	version, err = m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	require.NoError(t, m.Up(ctx))
}

func TestMapError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, _ := openMigrated(t)

	_, err := db.ExecContext(ctx, "INSERT INTO decision_groups (name) VALUES ('Work')")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "INSERT INTO decision_groups (name) VALUES ('Work')")
	require.Error(t, err)
	assert.ErrorIs(t, sqlite.MapError(err), store.ErrDuplicate)

	_, err = db.ExecContext(ctx,
		"INSERT INTO decisions (title, created_at, actual_regret) VALUES ('x', CURRENT_TIMESTAMP, 42)")
	require.Error(t, err)
	assert.ErrorIs(t, sqlite.MapError(err), store.ErrInvalidEntity)

	_, err = db.ExecContext(ctx,
		"INSERT INTO decisions (title, created_at, group_id) VALUES ('x', CURRENT_TIMESTAMP, 999)")
	require.Error(t, err)
	assert.ErrorIs(t, sqlite.MapError(err), store.ErrInvalidEntity)

	assert.ErrorIs(t, sqlite.MapError(sql.ErrNoRows), store.ErrNotFound)
	assert.NoError(t, sqlite.MapError(nil))

	other := errors.New("disk I/O error")
	assert.Same(t, other, sqlite.MapError(other))
}

func TestDialectKeepsQuestionMarks(t *testing.T) {
	t.Parallel()
	q := "SELECT id FROM decisions WHERE id = ?"
	assert.Equal(t, q, sqlite.Dialect.Rebind(q))
}
