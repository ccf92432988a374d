// Package gateway moves the master table in and out of the process:
// spreadsheet import/export, remote versioned commits, and whole-table
// search. It never holds state of its own; the in-memory table stays
// authoritative whatever a gateway call does.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/montsmed/shelfinv/internal/domain"
)

// Remote commits an exported table blob to a versioned object store.
// Implementations retry transient failures internally up to a bounded number
// of attempts.
type Remote interface {
	Commit(ctx context.Context, content []byte, message string) error
}

// CommitError reports a remote commit that failed for good, after all retry
// attempts were spent. The table and session are untouched when it is
// returned.
type CommitError struct {
	Attempts int
	Last     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("remote commit failed after %d attempt(s): %v", e.Attempts, e.Last)
}

func (e *CommitError) Unwrap() error { return e.Last }

// Search returns the rows whose description, model, or serial/lot contains
// query, case-insensitively. The second result distinguishes "no filter
// applied" from "filtered down to nothing": a blank query returns
// (nil, false) so callers can show the unfiltered table instead of an empty
// result set.
func Search(rows []domain.Row, query string) ([]domain.Row, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false
	}
	needle := strings.ToLower(query)

	var matches []domain.Row
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Description), needle) ||
			strings.Contains(strings.ToLower(r.Model), needle) ||
			strings.Contains(strings.ToLower(r.SerialLot), needle) {
			matches = append(matches, r)
		}
	}
	return matches, true
}
