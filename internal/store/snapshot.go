package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/montsmed/shelfinv/internal/domain"
)

// SnapshotStore persists the master table to sqlite so a restarted process
// can resume with the last reconciled state. Each Save replaces the whole
// snapshot; row order is the table's iteration order.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save replaces the stored snapshot with rows, atomically.
func (s *SnapshotStore) Save(ctx context.Context, rows []domain.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to roll back snapshot transaction", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_rows`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_rows (position, row_id, location, description, unit, model, serial_lot, remark, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("failed to close statement", "error", err)
		}
	}()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, i, r.ID, r.Location, r.Description, r.Unit, r.Model, r.SerialLot, r.Remark, r.ImageURL); err != nil {
			return fmt.Errorf("failed to insert snapshot row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot in saved order. An absent snapshot is an
// empty table, not an error.
func (s *SnapshotStore) Load(ctx context.Context) ([]domain.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_id, location, description, unit, model, serial_lot, remark, image_url
		FROM snapshot_rows ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var out []domain.Row
	for rows.Next() {
		var r domain.Row
		if err := rows.Scan(&r.ID, &r.Location, &r.Description, &r.Unit, &r.Model, &r.SerialLot, &r.Remark, &r.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return out, nil
}
