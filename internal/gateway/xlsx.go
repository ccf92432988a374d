package gateway

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/montsmed/shelfinv/internal/domain"
)

const sheetName = "Inventory"

// ExportSnapshot serializes the table to an xlsx workbook: one worksheet, a
// header row with the seven fixed columns, then one row per table row in
// iteration order. The synthetic row ID is deliberately not exported.
func ExportSnapshot(rows []domain.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}

	header := make([]interface{}, len(domain.Columns))
	for i, c := range domain.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, r := range rows {
		cells := []interface{}{r.Location, r.Description, r.Unit, r.Model, r.SerialLot, r.Remark, r.ImageURL}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportTable parses an uploaded xlsx workbook into normalized rows. When the
// first row carries any of the required column names it is treated as a
// header and all seven names must be present (a *domain.MissingColumnsError
// names the absent ones); otherwise the first seven columns are taken
// positionally. Columns beyond the seventh are ignored.
func ImportTable(r io.Reader) ([]domain.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close workbook", "error", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no worksheets")
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	// Column index per required column name; identity when positional.
	colIndex := make(map[string]int, len(domain.Columns))
	data := cells
	if hasHeader(cells[0]) {
		if err := domain.ValidateColumns(cells[0]); err != nil {
			return nil, err
		}
		for i, h := range cells[0] {
			colIndex[strings.TrimSpace(h)] = i
		}
		data = cells[1:]
	} else {
		for i, c := range domain.Columns {
			colIndex[c] = i
		}
	}

	var rows []domain.Row
	for _, record := range data {
		raw := domain.RawRow{
			Location:    cellAt(record, colIndex["Location"]),
			Description: cellAt(record, colIndex["Description"]),
			Unit:        cellAt(record, colIndex["Unit"]),
			Model:       cellAt(record, colIndex["Model"]),
			SerialLot:   cellAt(record, colIndex["SN/Lot"]),
			Remark:      cellAt(record, colIndex["Remark"]),
			ImageURL:    cellAt(record, colIndex["Image_URL"]),
		}
		row := domain.Normalize(raw)
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// hasHeader reports whether any cell in the first row names a required
// column.
func hasHeader(first []string) bool {
	for _, cell := range first {
		cell = strings.TrimSpace(cell)
		for _, col := range domain.Columns {
			if cell == col {
				return true
			}
		}
	}
	return false
}

func cellAt(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// isBlank reports a row with no content in any field; stray formatting rows
// at the bottom of a worksheet come through like this.
func isBlank(r domain.Row) bool {
	return r.Location == "" && r.Description == "" && r.Unit == 0 &&
		r.Model == "" && r.SerialLot == "" && r.Remark == "" && r.ImageURL == ""
}
