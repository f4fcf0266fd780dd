// Package validate turns raw extracted rows into SampleRecords, rejecting
// rows that fail mandatory-field rules without aborting the batch.
package validate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aquaguard/hmpi-service/internal/coerce"
	"github.com/aquaguard/hmpi-service/internal/entity"
)

// Rejection describes one row that failed validation.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type RecordValidator struct {
	logger *slog.Logger
}

func NewRecordValidator(logger *slog.Logger) *RecordValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordValidator{logger: logger}
}

// ValidateRow builds a SampleRecord from one raw row. Serial number,
// longitude and latitude are mandatory and must coerce to numbers; year
// defaults to 0 when unparseable; every other numeric field is optional and
// stays absent (not zero) when missing. Never panics on dirty cells.
func (v *RecordValidator) ValidateRow(row map[string]string, idx int) (*entity.SampleRecord, *Rejection) {
	sNo, okS := coerce.Field(row, "S.No")
	lon, okLon := coerce.Field(row, "Longitude")
	lat, okLat := coerce.Field(row, "Latitude")
	if !okS || !okLon || !okLat {
		// Log the raw cells to make extraction failures debuggable.
		v.logger.Warn("skipping row: missing required field",
			"index", idx,
			"s_no_raw", row["S.No"],
			"longitude_raw", row["Longitude"],
			"latitude_raw", row["Latitude"],
		)
		return nil, &Rejection{
			Index: idx,
			Reason: fmt.Sprintf("missing required field (s_no=%q, longitude=%q, latitude=%q)",
				row["S.No"], row["Longitude"], row["Latitude"]),
		}
	}

	year := 0
	if y, ok := coerce.Field(row, "Year"); ok {
		year = int(y)
	}

	rec := &entity.SampleRecord{
		SerialNumber: int(sNo),
		State:        text(row, "State"),
		District:     text(row, "District"),
		Location:     text(row, "Location"),
		Longitude:    lon,
		Latitude:     lat,
		Year:         year,

		PH:          coerce.OptionalField(row, "pH"),
		ECuScm:      coerce.OptionalField(row, "EC (µS/cm)"),
		CO3MgL:      coerce.OptionalField(row, "CO3 (mg/L)"),
		HCO3MgL:     coerce.OptionalField(row, "HCO3 (mg/L)"),
		ClMgL:       coerce.OptionalField(row, "Cl (mg/L)"),
		FMgL:        coerce.OptionalField(row, "F (mg/L)"),
		SO4MgL:      coerce.OptionalField(row, "SO4 (mg/L)"),
		NO3MgL:      coerce.OptionalField(row, "NO3 (mg/L)"),
		PO4MgL:      coerce.OptionalField(row, "PO4 (mg/L)"),
		HardnessMgL: coerce.OptionalField(row, "Total Hardness (mg/L)"),
		CaMgL:       coerce.OptionalField(row, "Ca (mg/L)"),
		MgMgL:       coerce.OptionalField(row, "Mg (mg/L)"),
		NaMgL:       coerce.OptionalField(row, "Na (mg/L)"),
		KMgL:        coerce.OptionalField(row, "K (mg/L)"),
		FePPM:       coerce.OptionalField(row, "Fe (ppm)"),
		AsPPB:       coerce.OptionalField(row, "As (ppb)"),
		UPPB:        coerce.OptionalField(row, "U (ppb)"),
	}
	return rec, nil
}

// text coerces a cell to a trimmed string. Extraction sometimes turns a
// numeric-looking state or district into a number; stringifying defensively
// keeps the pipeline alive.
func text(row map[string]string, key string) string {
	return strings.TrimSpace(row[key])
}
