package store

import (
	"strings"
	"sync"

	"github.com/montsmed/shelfinv/internal/domain"
)

// Inventory owns the master table: the ordered list of every row loaded from
// a spreadsheet plus any rows added through the editor. It is the sole
// mutation boundary for row data. Rows whose location is not a valid shelf
// slot are kept in the table (they survive export) but never appear in a
// partition view.
type Inventory struct {
	mu   sync.RWMutex
	rows []domain.Row
}

func NewInventory() *Inventory {
	return &Inventory{}
}

// LoadReplace discards the current table and installs rows. Every row is
// re-run through normalization; the table never holds un-normalized rows.
func (inv *Inventory) LoadReplace(rows []domain.Row) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.rows = cleanAll(rows)
}

// LoadAppend normalizes rows and appends them to the table. Duplicates are
// permitted; inventory items carry no uniqueness constraint.
func (inv *Inventory) LoadAppend(rows []domain.Row) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.rows = append(inv.rows, cleanAll(rows)...)
}

// ViewOf returns the rows at key in table order. The result is a copy; the
// caller may edit it freely without touching the table.
func (inv *Inventory) ViewOf(key domain.Key) []domain.Row {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	loc := key.String()
	var view []domain.Row
	for _, r := range inv.rows {
		if r.Location == loc {
			view = append(view, r)
		}
	}
	return view
}

// Reconcile replaces the whole partition at key with newRows: every existing
// row at that location is removed and newRows are appended at the end of the
// table, each re-stamped with the key's location so a grid edit that touched
// the location cell cannot move a row between partitions. Rows at other
// locations are untouched. An empty newRows empties the partition; callers
// are responsible for confirming that when it is a deliberate clear.
func (inv *Inventory) Reconcile(key domain.Key, newRows []domain.Row) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	loc := key.String()

	kept := inv.rows[:0:0]
	for _, r := range inv.rows {
		if r.Location != loc {
			kept = append(kept, r)
		}
	}
	for _, r := range newRows {
		r = domain.Clean(r)
		r.Location = loc
		kept = append(kept, r)
	}
	inv.rows = kept
}

// DeleteRows removes the rows at key matching pred and returns how many were
// removed.
func (inv *Inventory) DeleteRows(key domain.Key, pred func(domain.Row) bool) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	loc := key.String()

	kept := inv.rows[:0:0]
	deleted := 0
	for _, r := range inv.rows {
		if r.Location == loc && pred(r) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	inv.rows = kept
	return deleted
}

// AddRow appends one row to the partition at key. The row is normalized and
// its location forced to the key.
func (inv *Inventory) AddRow(key domain.Key, row domain.Row) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	row = domain.Clean(row)
	row.Location = key.String()
	inv.rows = append(inv.rows, row)
}

// Rows returns a copy of the entire table in iteration order.
func (inv *Inventory) Rows() []domain.Row {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]domain.Row, len(inv.rows))
	copy(out, inv.rows)
	return out
}

// Len returns the number of rows in the table.
func (inv *Inventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.rows)
}

// CountAt returns the number of rows at key.
func (inv *Inventory) CountAt(key domain.Key) int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	loc := key.String()
	n := 0
	for _, r := range inv.rows {
		if r.Location == loc {
			n++
		}
	}
	return n
}

// Stats summarizes the table for the statistics panel.
type Stats struct {
	Total      int
	WithImages int
	Functional int
	ByShelf    map[string]int
	ByLocation map[string]int
}

// Stats walks the table once and counts totals, rows carrying an image URL,
// rows whose remark marks them functional, and per-shelf / per-location
// breakdowns. Only valid locations contribute to the breakdowns.
func (inv *Inventory) Stats() Stats {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	st := Stats{
		ByShelf:    make(map[string]int),
		ByLocation: make(map[string]int),
	}
	st.Total = len(inv.rows)
	for _, r := range inv.rows {
		if r.ImageURL != "" {
			st.WithImages++
		}
		if strings.Contains(r.Remark, "Functional") {
			st.Functional++
		}
		if k, ok := domain.ParseKey(r.Location); ok {
			st.ByShelf[k.Shelf]++
			st.ByLocation[r.Location]++
		}
	}
	return st
}

func cleanAll(rows []domain.Row) []domain.Row {
	out := make([]domain.Row, len(rows))
	for i, r := range rows {
		out[i] = domain.Clean(r)
	}
	return out
}
