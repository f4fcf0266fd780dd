package extract

import (
	"fmt"

	"github.com/aquaguard/hmpi-service/internal/common"
)

// CoreColumns is the fixed expected schema for ground-water sample tables:
// the 24 data columns, in document order.
var CoreColumns = []string{
	"S.No", "State", "District", "Location", "Longitude", "Latitude", "Year",
	"pH", "EC (µS/cm)", "CO3 (mg/L)", "HCO3 (mg/L)", "Cl (mg/L)", "F (mg/L)",
	"SO4 (mg/L)", "NO3 (mg/L)", "PO4 (mg/L)", "Total Hardness (mg/L)",
	"Ca (mg/L)", "Mg (mg/L)", "Na (mg/L)", "K (mg/L)", "Fe (ppm)", "As (ppb)",
	"U (ppb)",
}

// Row is one raw extracted table row, tagged with its source page.
type Row struct {
	Page  int
	Cells []string
}

// Reconcile maps concatenated raw rows onto the expected schema. The
// observed column count is the widest row in the batch. When at least as
// many columns were observed as expected, surplus cells are discarded and
// the first data row is dropped (extraction typically misdetects a repeated
// header as data). Fewer observed columns than expected means the downstream
// field mapping would be meaningless, so the whole document is rejected.
func Reconcile(rows []Row) ([]map[string]string, error) {
	if len(rows) == 0 {
		return nil, common.ErrNoTables
	}

	observed := 0
	for _, r := range rows {
		if len(r.Cells) > observed {
			observed = len(r.Cells)
		}
	}
	if observed < len(CoreColumns) {
		return nil, fmt.Errorf("%w: observed %d columns, expected %d",
			common.ErrSchemaMismatch, observed, len(CoreColumns))
	}

	// First data row is the junk header.
	rows = rows[1:]

	out := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		rec := make(map[string]string, len(CoreColumns))
		for i, name := range CoreColumns {
			if i < len(r.Cells) {
				rec[name] = r.Cells[i]
			} else {
				rec[name] = ""
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
