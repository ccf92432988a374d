package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Row is one inventory record. Text fields are always the canonical empty
// string when blank, never a nil or NaN-like sentinel; Unit is never negative.
// ID is a synthetic identifier stamped at normalization so the grid widget can
// address a single row even when two rows are field-identical. It is ignored
// by value comparison and never exported to spreadsheets.
type Row struct {
	ID          string
	Location    string
	Description string
	Unit        int
	Model       string
	SerialLot   string
	Remark      string
	ImageURL    string
}

// RawRow is a row as it arrives from an import file or from the grid widget,
// before any type coercion. All fields are untrusted text.
type RawRow struct {
	ID          string
	Location    string
	Description string
	Unit        string
	Model       string
	SerialLot   string
	Remark      string
	ImageURL    string
}

// Columns is the fixed spreadsheet column set, in export order.
var Columns = []string{"Location", "Description", "Unit", "Model", "SN/Lot", "Remark", "Image_URL"}

// MissingColumnsError reports import files that lack required columns.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// ValidateColumns checks that every required column name is present in
// headers. Extra columns are allowed and ignored by the importer.
func ValidateColumns(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, col := range Columns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Missing: missing}
	}
	return nil
}

// Normalize coerces a raw row into a Row. It never fails: unparseable units
// become 0, NaN-like text becomes the empty string. A fresh ID is assigned
// unless the raw row already carries one.
func Normalize(raw RawRow) Row {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return Row{
		ID:          id,
		Location:    cleanText(raw.Location),
		Description: cleanText(raw.Description),
		Unit:        coerceUnit(raw.Unit),
		Model:       cleanText(raw.Model),
		SerialLot:   cleanText(raw.SerialLot),
		Remark:      cleanText(raw.Remark),
		ImageURL:    cleanText(raw.ImageURL),
	}
}

// Clean re-applies the normalization rules to an already-typed Row. It is run
// at every boundary where rows re-enter the store so a hand-built Row can
// never smuggle in an un-normalized field or a missing ID.
func Clean(r Row) Row {
	if strings.TrimSpace(r.ID) == "" {
		r.ID = uuid.NewString()
	}
	r.Location = cleanText(r.Location)
	r.Description = cleanText(r.Description)
	r.Model = cleanText(r.Model)
	r.SerialLot = cleanText(r.SerialLot)
	r.Remark = cleanText(r.Remark)
	r.ImageURL = cleanText(r.ImageURL)
	if r.Unit < 0 {
		r.Unit = 0
	}
	return r
}

// Equal compares two rows field-wise, ignoring the synthetic ID. Rows have no
// stable identity in the source data, so this is the only meaningful equality.
func (r Row) Equal(o Row) bool {
	return r.Location == o.Location &&
		r.Description == o.Description &&
		r.Unit == o.Unit &&
		r.Model == o.Model &&
		r.SerialLot == o.SerialLot &&
		r.Remark == o.Remark &&
		r.ImageURL == o.ImageURL
}

// RowsEqual compares two row sequences in order, field-wise.
func RowsEqual(a, b []Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// cleanText trims whitespace and maps the NaN-like sentinels that spreadsheet
// tooling emits for empty cells to the canonical empty string.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "<na>", "none", "null":
		return ""
	}
	return s
}

// coerceUnit parses a quantity cell. Spreadsheets deliver integers as "3" or
// "3.0" depending on cell formatting, so parse as float and truncate.
// Anything unparseable or negative coerces to 0; this is a warning-level
// condition, never an error.
func coerceUnit(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f)
}
