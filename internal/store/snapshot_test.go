package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/montsmed/shelfinv/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot_test.db")
	d, err := sql.Open("sqlite", "file:"+path+"?cache=shared&mode=rwc&_journal_mode=WAL")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	_, err = d.Exec(`
		CREATE TABLE snapshot_rows (
			position    INTEGER PRIMARY KEY,
			row_id      TEXT    NOT NULL,
			location    TEXT    NOT NULL DEFAULT '',
			description TEXT    NOT NULL DEFAULT '',
			unit        INTEGER NOT NULL DEFAULT 0,
			model       TEXT    NOT NULL DEFAULT '',
			serial_lot  TEXT    NOT NULL DEFAULT '',
			remark      TEXT    NOT NULL DEFAULT '',
			image_url   TEXT    NOT NULL DEFAULT ''
		)
	`)
	require.NoError(t, err)
	return d
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	snap := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	saved := []domain.Row{
		{ID: "1", Location: "C3", Description: "Monitor", Unit: 2, Model: "MX-1", SerialLot: "SN42", Remark: "Functional", ImageURL: "http://img/1.png"},
		{ID: "2", Location: "A1", Description: "Probe", Unit: 1},
		{ID: "3", Location: "Z9", Description: "Lost", Unit: 0},
	}
	require.NoError(t, snap.Save(ctx, saved))

	loaded, err := snap.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, saved, loaded, "order and every field must survive the round trip")
}

func TestSnapshotSaveReplaces(t *testing.T) {
	snap := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, snap.Save(ctx, []domain.Row{{ID: "1", Description: "Old"}}))
	require.NoError(t, snap.Save(ctx, []domain.Row{{ID: "2", Description: "New"}, {ID: "3", Description: "Newer"}}))

	loaded, err := snap.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "New", loaded[0].Description)
}

func TestSnapshotLoadEmpty(t *testing.T) {
	snap := NewSnapshotStore(openTestDB(t))

	loaded, err := snap.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSnapshotSaveEmptyClears(t *testing.T) {
	snap := NewSnapshotStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, snap.Save(ctx, []domain.Row{{ID: "1", Description: "Gone"}}))
	require.NoError(t, snap.Save(ctx, nil))

	loaded, err := snap.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
