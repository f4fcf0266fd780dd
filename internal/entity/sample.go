package entity

// SampleRecord represents one ingested ground-water measurement for data
// transfer between layers. Numeric parameters are pointers: nil means the
// value was not measured (distinct from zero). Concentration fields keep the
// source document's units; only the index engine consumes normalized mg/L.
type SampleRecord struct {
	SerialNumber int     `json:"s_no"`
	State        string  `json:"state"`
	District     string  `json:"district"`
	Location     string  `json:"location"`
	Longitude    float64 `json:"longitude"`
	Latitude     float64 `json:"latitude"`
	Year         int     `json:"year"`

	PH          *float64 `json:"ph,omitempty"`
	ECuScm      *float64 `json:"ec_us_cm,omitempty"`
	CO3MgL      *float64 `json:"co3_mg_l,omitempty"`
	HCO3MgL     *float64 `json:"hco3_mg_l,omitempty"`
	ClMgL       *float64 `json:"cl_mg_l,omitempty"`
	FMgL        *float64 `json:"f_mg_l,omitempty"`
	SO4MgL      *float64 `json:"so4_mg_l,omitempty"`
	NO3MgL      *float64 `json:"no3_mg_l,omitempty"`
	PO4MgL      *float64 `json:"po4_mg_l,omitempty"`
	HardnessMgL *float64 `json:"total_hardness_mg_l,omitempty"`
	CaMgL       *float64 `json:"ca_mg_l,omitempty"`
	MgMgL       *float64 `json:"mg_mg_l,omitempty"`
	NaMgL       *float64 `json:"na_mg_l,omitempty"`
	KMgL        *float64 `json:"k_mg_l,omitempty"`
	FePPM       *float64 `json:"fe_ppm,omitempty"`
	AsPPB       *float64 `json:"as_ppb,omitempty"`
	UPPB        *float64 `json:"u_ppb,omitempty"`
}

// Ref returns the tagged sample reference for this record.
func (s *SampleRecord) Ref() SampleRef {
	return GroundWaterRef(s.SerialNumber)
}
