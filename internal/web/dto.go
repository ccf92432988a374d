package web

import "github.com/montsmed/shelfinv/internal/domain"

// rowJSON is the wire shape of one row as the grid widget sees it.
type rowJSON struct {
	ID          string `json:"id"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Unit        int    `json:"unit"`
	Model       string `json:"model"`
	SerialOrLot string `json:"serialOrLot"`
	Remark      string `json:"remark"`
	ImageURL    string `json:"imageUrl"`
}

func toRowJSON(r domain.Row) rowJSON {
	return rowJSON{
		ID:          r.ID,
		Location:    r.Location,
		Description: r.Description,
		Unit:        r.Unit,
		Model:       r.Model,
		SerialOrLot: r.SerialLot,
		Remark:      r.Remark,
		ImageURL:    r.ImageURL,
	}
}

func toRowsJSON(rows []domain.Row) []rowJSON {
	out := make([]rowJSON, len(rows))
	for i, r := range rows {
		out[i] = toRowJSON(r)
	}
	return out
}

func fromRowJSON(r rowJSON) domain.Row {
	return domain.Row{
		ID:          r.ID,
		Location:    r.Location,
		Description: r.Description,
		Unit:        r.Unit,
		Model:       r.Model,
		SerialLot:   r.SerialOrLot,
		Remark:      r.Remark,
		ImageURL:    r.ImageURL,
	}
}

func fromRowsJSON(rows []rowJSON) []domain.Row {
	out := make([]domain.Row, len(rows))
	for i, r := range rows {
		out[i] = fromRowJSON(r)
	}
	return out
}

// locationJSON describes one shelf slot for the location picker.
type locationJSON struct {
	Key   string `json:"key"`
	Shelf string `json:"shelf"`
	Layer int    `json:"layer"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// sessionJSON is the editing-session snapshot the grid polls.
type sessionJSON struct {
	Active  string    `json:"active,omitempty"`
	Label   string    `json:"label,omitempty"`
	Dirty   bool      `json:"dirty"`
	Pushing bool      `json:"pushing"`
	Rows    []rowJSON `json:"rows"`
}
