package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemory(t *testing.T) {
	database, err := sql.Open("sqlite", "file::memory:?cache=shared&mode=rwc&_journal_mode=WAL")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, database.Close()) })

	err = database.Ping()
	assert.NoError(t, err)
}

func TestMigrationsApply(t *testing.T) {
	database, err := sql.Open("sqlite", "file::memory:?cache=shared&mode=rwc&_journal_mode=WAL")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, database.Close()) })

	err = runMigrations(database)
	require.NoError(t, err)

	var tableName string
	err = database.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='snapshot_rows'").Scan(&tableName)
	assert.NoError(t, err)
	assert.Equal(t, "snapshot_rows", tableName)
}

func TestMigrationsIdempotent(t *testing.T) {
	database, err := sql.Open("sqlite", "file::memory:?cache=shared&mode=rwc&_journal_mode=WAL")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, database.Close()) })

	require.NoError(t, runMigrations(database))
	require.NoError(t, runMigrations(database))

	var applied int
	err = database.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}
