package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUnitCoercion(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"3", 3},
		{"3.0", 3},
		{"abc", 0},
		{"", 0},
		{"-2", 0},
		{" 12 ", 12},
		{"nan", 0},
	}
	for _, tt := range tests {
		row := Normalize(RawRow{Unit: tt.raw})
		assert.Equal(t, tt.want, row.Unit, "unit %q", tt.raw)
	}
}

func TestNormalizeTextFields(t *testing.T) {
	row := Normalize(RawRow{
		Location:    " C3 ",
		Description: "Codman Licox PtO2 Monitor",
		Model:       "nan",
		SerialLot:   "<NA>",
		Remark:      "None",
		ImageURL:    "null",
	})
	assert.Equal(t, "C3", row.Location)
	assert.Equal(t, "Codman Licox PtO2 Monitor", row.Description)
	assert.Equal(t, "", row.Model)
	assert.Equal(t, "", row.SerialLot)
	assert.Equal(t, "", row.Remark)
	assert.Equal(t, "", row.ImageURL)
}

func TestNormalizeAssignsID(t *testing.T) {
	a := Normalize(RawRow{Description: "x"})
	b := Normalize(RawRow{Description: "x"})
	assert.NotEmpty(t, a.ID)
	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, a.ID, b.ID, "field-identical rows must get distinct IDs")

	kept := Normalize(RawRow{ID: "keep-me"})
	assert.Equal(t, "keep-me", kept.ID)
}

func TestCleanRepairsRow(t *testing.T) {
	r := Clean(Row{Location: " A1", Unit: -5, Remark: "nan"})
	assert.Equal(t, "A1", r.Location)
	assert.Equal(t, 0, r.Unit)
	assert.Equal(t, "", r.Remark)
	assert.NotEmpty(t, r.ID)
}

func TestRowEqualIgnoresID(t *testing.T) {
	a := Row{ID: "1", Location: "A1", Description: "Probe", Unit: 2}
	b := Row{ID: "2", Location: "A1", Description: "Probe", Unit: 2}
	assert.True(t, a.Equal(b))

	b.Unit = 3
	assert.False(t, a.Equal(b))
}

func TestValidateColumns(t *testing.T) {
	err := ValidateColumns([]string{"Location", "Description", "Unit", "Model", "SN/Lot", "Remark", "Image_URL"})
	assert.NoError(t, err)

	// Extra columns beyond the required set are fine.
	err = ValidateColumns([]string{"Location", "Description", "Unit", "Model", "SN/Lot", "Remark", "Image_URL", "Extra"})
	assert.NoError(t, err)
}

func TestValidateColumnsMissing(t *testing.T) {
	err := ValidateColumns([]string{"Location", "Description", "Unit", "SN/Lot", "Remark", "Image_URL"})
	require.Error(t, err)

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Model"}, missing.Missing)
	assert.Contains(t, err.Error(), "Model")
}
