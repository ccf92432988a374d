// Package session tracks which shelf slot is being edited and owns the
// working copy of that partition's rows. Its one hard guarantee is
// switch-safe persistence: changing the active partition never discards
// unsaved edits to the previous one, because a dirty working copy is always
// reconciled into the master table before the switch.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/montsmed/shelfinv/internal/domain"
	"github.com/montsmed/shelfinv/internal/gateway"
	"github.com/montsmed/shelfinv/internal/store"
)

var (
	// ErrNoPartition is returned by operations that need an active partition.
	ErrNoPartition = errors.New("no shelf location selected")
	// ErrNothingSelected is the no-op notice for a delete that matched no rows.
	ErrNothingSelected = errors.New("no rows selected")
	// ErrNoChanges is the no-op notice for a commit with a clean working copy.
	ErrNoChanges = errors.New("no changes to save")
	// ErrPushInFlight rejects a remote push while another one is outstanding.
	ErrPushInFlight = errors.New("a remote push is already in flight")
	// ErrRemoteUnavailable is returned when no remote is configured
	// (export-only mode).
	ErrRemoteUnavailable = errors.New("remote persistence is not configured")
)

// Session is the single-user editing session. All partition-scoped mutation
// of the master table flows through it; handlers never touch working rows or
// reconcile directly.
type Session struct {
	mu      sync.Mutex
	pushed  *sync.Cond // signalled when an in-flight push resolves
	inv     *store.Inventory
	remote  gateway.Remote
	logger  *slog.Logger
	onSave  func(rows []domain.Row) // autosave hook, runs after each table mutation
	active  *domain.Key
	working []domain.Row
	// baseline is the working copy as of the last reconcile; dirty detection
	// compares against it by value, since rows have no stable identity in the
	// source data.
	baseline []domain.Row
	dirty    bool
	pushing  bool
}

// New creates a session over inv. remote may be nil (export-only mode);
// onSave may be nil.
func New(inv *store.Inventory, remote gateway.Remote, onSave func([]domain.Row), logger *slog.Logger) *Session {
	s := &Session{
		inv:    inv,
		remote: remote,
		logger: logger,
		onSave: onSave,
	}
	s.pushed = sync.NewCond(&s.mu)
	return s
}

// Select makes key the active partition and returns its working rows. If the
// current partition is dirty its working rows are reconciled into the table
// first; this must happen, not best-effort, or the edits would be lost with
// the switch. A select issued while a remote push is in flight waits for the
// push to resolve before reconciling.
func (s *Session) Select(key domain.Key) ([]domain.Row, error) {
	if !domain.IsValid(key.Shelf, key.Layer) {
		return nil, fmt.Errorf("unknown shelf location %s", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitForPush()

	if s.active != nil && s.dirty {
		s.reconcileLocked()
	}

	s.active = &key
	s.seedLocked()
	s.logger.Debug("partition selected", "location", key.String(), "rows", len(s.working))
	return s.workingCopyLocked(), nil
}

// Active returns the active partition key, if one is selected.
func (s *Session) Active() (domain.Key, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return domain.Key{}, false
	}
	return *s.active, true
}

// WorkingRows returns a copy of the working rows.
func (s *Session) WorkingRows() []domain.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workingCopyLocked()
}

// Dirty reports whether the working copy has diverged from its last
// reconciled state.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Pushing reports whether a remote push is in flight.
func (s *Session) Pushing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushing
}

// EditWorkingRows replaces the working copy with rows as edited in the grid.
// Each row is re-normalized at this boundary. The dirty flag is set only if
// the rows differ from the baseline by value.
func (s *Session) EditWorkingRows(rows []domain.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ErrNoPartition
	}

	cleaned := make([]domain.Row, len(rows))
	for i, r := range rows {
		cleaned[i] = domain.Clean(r)
	}
	s.working = cleaned
	s.dirty = !domain.RowsEqual(s.working, s.baseline)
	return nil
}

// AddBlankRow appends a new default row to the working copy and returns it.
func (s *Session) AddBlankRow() (domain.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return domain.Row{}, ErrNoPartition
	}

	row := domain.Clean(domain.Row{
		Location:    s.active.String(),
		Description: "New Item",
		Unit:        1,
	})
	s.working = append(s.working, row)
	s.dirty = true
	return row, nil
}

// DeleteSelected removes the working rows matching pred and returns how many
// were removed. Matching nothing is a no-op reported as ErrNothingSelected,
// never a silent success.
func (s *Session) DeleteSelected(pred func(domain.Row) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return 0, ErrNoPartition
	}

	kept := s.working[:0:0]
	deleted := 0
	for _, r := range s.working {
		if pred(r) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	if deleted == 0 {
		return 0, ErrNothingSelected
	}
	s.working = kept
	s.dirty = true
	return deleted, nil
}

// Commit reconciles the working copy into the master table. Committing a
// clean working copy is a no-op reported as ErrNoChanges; calling Commit
// twice without edits in between is therefore idempotent.
func (s *Session) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ErrNoPartition
	}
	if !s.dirty {
		return ErrNoChanges
	}
	s.reconcileLocked()
	return nil
}

// Discard drops the working edits and reseeds from the master table.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ErrNoPartition
	}
	s.seedLocked()
	return nil
}

// ClearPartition removes every row in the active partition from the master
// table. This is the destructive operation behind the confirmed "clear
// location" action; it reconciles immediately rather than waiting for a
// commit so the confirmation maps to exactly one table mutation.
func (s *Session) ClearPartition() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return 0, ErrNoPartition
	}

	cleared := s.inv.CountAt(*s.active)
	s.working = nil
	s.reconcileLocked()
	s.logger.Info("partition cleared", "location", s.active.String(), "rows_removed", cleared)
	return cleared, nil
}

// ImportReplace swaps the whole master table for rows. If a partition is
// active its working copy is reseeded from the new table; uncommitted edits
// to it are superseded by the import, which is what a wholesale replace
// means.
func (s *Session) ImportReplace(rows []domain.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitForPush()
	s.inv.LoadReplace(rows)
	if s.active != nil {
		s.seedLocked()
	}
	s.autosaveLocked()
}

// ImportAppend adds rows to the master table, keeping what is already there.
// A dirty active partition is reconciled first so the append cannot clobber
// unsaved edits when the partition is reseeded.
func (s *Session) ImportAppend(rows []domain.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitForPush()
	if s.active != nil && s.dirty {
		s.reconcileLocked()
	}
	s.inv.LoadAppend(rows)
	if s.active != nil {
		s.seedLocked()
	}
	s.autosaveLocked()
}

// Push commits the exported table to the remote store. A dirty working copy
// is reconciled first so the pushed snapshot includes the edits on screen.
// Only one push may be in flight; a second one is rejected rather than
// queued. The session mutex is released for the duration of the network
// call, so reads stay available and pending switches queue on the push flag.
// A failed push leaves table and session exactly as they were.
func (s *Session) Push(ctx context.Context, message string) error {
	s.mu.Lock()
	if s.remote == nil {
		s.mu.Unlock()
		return ErrRemoteUnavailable
	}
	if s.pushing {
		s.mu.Unlock()
		return ErrPushInFlight
	}
	if s.active != nil && s.dirty {
		s.reconcileLocked()
	}
	content, err := gateway.ExportSnapshot(s.inv.Rows())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to export table for push: %w", err)
	}
	s.pushing = true
	s.mu.Unlock()

	err = s.remote.Commit(ctx, content, message)

	s.mu.Lock()
	s.pushing = false
	s.pushed.Broadcast()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("remote push failed", "error", err)
		return err
	}
	return nil
}

// waitForPush blocks until no push is in flight. Callers must hold s.mu.
func (s *Session) waitForPush() {
	for s.pushing {
		s.pushed.Wait()
	}
}

// reconcileLocked writes the working copy back into the master table as a
// whole-partition replace, resets the baseline, and autosaves. Callers must
// hold s.mu and have an active partition.
func (s *Session) reconcileLocked() {
	s.inv.Reconcile(*s.active, s.working)
	s.working = s.inv.ViewOf(*s.active)
	s.baseline = append([]domain.Row(nil), s.working...)
	s.dirty = false
	s.logger.Info("partition reconciled", "location", s.active.String(), "rows", len(s.working))
	s.autosaveLocked()
}

// seedLocked refreshes working and baseline from the master table. Callers
// must hold s.mu and have an active partition.
func (s *Session) seedLocked() {
	s.working = s.inv.ViewOf(*s.active)
	s.baseline = append([]domain.Row(nil), s.working...)
	s.dirty = false
}

func (s *Session) workingCopyLocked() []domain.Row {
	out := make([]domain.Row, len(s.working))
	copy(out, s.working)
	return out
}

// autosaveLocked persists the table through the hook, best-effort: the
// in-memory table is authoritative and a failed autosave must not fail the
// user's edit.
func (s *Session) autosaveLocked() {
	if s.onSave == nil {
		return
	}
	s.onSave(s.inv.Rows())
}
