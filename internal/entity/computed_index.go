package entity

import (
	"time"

	"github.com/aquaguard/hmpi-service/constants"
)

// ComputedIndex represents the result of one index computation over a sample.
// At most one authoritative record exists per (sample, calculation method);
// recomputing with force replaces the prior record in place.
type ComputedIndex struct {
	Sample            SampleRef                 `json:"sample"`
	HPIValue          float64                   `json:"hpi_value"`
	HEIValue          *float64                  `json:"hei_value,omitempty"`
	CdValue           *float64                  `json:"cd_value,omitempty"`
	MIValue           *float64                  `json:"mi_value,omitempty"`
	QualityCategory   constants.QualityCategory `json:"quality_category"`
	CalculationMethod string                    `json:"calculation_method"`
	ComputedAt        time.Time                 `json:"computed_at"`
	Notes             string                    `json:"notes,omitempty"`
}

// MapPoint is a trimmed computed-index view for the map frontend.
type MapPoint struct {
	Sample          SampleRef                 `json:"sample"`
	Latitude        float64                   `json:"latitude"`
	Longitude       float64                   `json:"longitude"`
	HPIValue        float64                   `json:"hmpi_value"`
	LocationName    string                    `json:"location_name,omitempty"`
	State           string                    `json:"state,omitempty"`
	District        string                    `json:"district,omitempty"`
	QualityCategory constants.QualityCategory `json:"quality_category,omitempty"`
	ComputedAt      time.Time                 `json:"computed_at,omitempty"`
	Year            int                       `json:"calculation_year,omitempty"`
}
