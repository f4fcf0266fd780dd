package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRowHappyPath(t *testing.T) {
	v := NewRecordValidator(nil)
	row := map[string]string{
		"S.No":      "101",
		"State":     " Karnataka ",
		"District":  "Bengaluru",
		"Location":  "Hebbal Lake",
		"Longitude": "77.59",
		"Latitude":  "13.04",
		"Year":      "2023",
		"pH":        "7.8",
		"Fe (ppm)":  "0.42",
		"As (ppb)":  "ND",
	}

	rec, rej := v.ValidateRow(row, 0)
	require.Nil(t, rej)
	require.NotNil(t, rec)

	assert.Equal(t, 101, rec.SerialNumber)
	assert.Equal(t, "Karnataka", rec.State)
	assert.Equal(t, 77.59, rec.Longitude)
	assert.Equal(t, 13.04, rec.Latitude)
	assert.Equal(t, 2023, rec.Year)

	require.NotNil(t, rec.PH)
	assert.Equal(t, 7.8, *rec.PH)
	require.NotNil(t, rec.FePPM)
	assert.Equal(t, 0.42, *rec.FePPM)

	// Placeholder and absent optionals stay absent, not zero.
	assert.Nil(t, rec.AsPPB)
	assert.Nil(t, rec.UPPB)
	assert.Nil(t, rec.ClMgL)
}

func TestValidateRowMandatoryFields(t *testing.T) {
	v := NewRecordValidator(nil)
	tests := []struct {
		name string
		row  map[string]string
	}{
		{"missing serial", map[string]string{"Longitude": "77.5", "Latitude": "13.0"}},
		{"placeholder serial", map[string]string{"S.No": "-", "Longitude": "77.5", "Latitude": "13.0"}},
		{"garbage longitude", map[string]string{"S.No": "1", "Longitude": "east", "Latitude": "13.0"}},
		{"missing latitude", map[string]string{"S.No": "1", "Longitude": "77.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, rej := v.ValidateRow(tt.row, 7)
			assert.Nil(t, rec)
			require.NotNil(t, rej)
			assert.Equal(t, 7, rej.Index)
			assert.Contains(t, rej.Reason, "missing required field")
		})
	}
}

func TestValidateRowYearDefaultsToZero(t *testing.T) {
	v := NewRecordValidator(nil)
	row := map[string]string{
		"S.No": "5", "Longitude": "77.5", "Latitude": "13.0", "Year": "unknown",
	}
	rec, rej := v.ValidateRow(row, 0)
	require.Nil(t, rej)
	assert.Equal(t, 0, rec.Year)
}

func TestValidateRowNumericLookingTextFields(t *testing.T) {
	v := NewRecordValidator(nil)
	row := map[string]string{
		"S.No": "5", "Longitude": "77.5", "Latitude": "13.0",
		"State": "42", "District": "7.5",
	}
	rec, rej := v.ValidateRow(row, 0)
	require.Nil(t, rej)
	assert.Equal(t, "42", rec.State)
	assert.Equal(t, "7.5", rec.District)
}

func TestValidateRowDirtyNumericCells(t *testing.T) {
	v := NewRecordValidator(nil)
	row := map[string]string{
		"S.No": "5", "Longitude": "77 .59", "Latitude": "1,3.04",
		"Ca (mg/L)": "1,234",
	}
	rec, rej := v.ValidateRow(row, 0)
	require.Nil(t, rej)
	assert.Equal(t, 77.59, rec.Longitude)
	assert.Equal(t, 13.04, rec.Latitude)
	require.NotNil(t, rec.CaMgL)
	assert.Equal(t, 1234.0, *rec.CaMgL)
}
