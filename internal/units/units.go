// Package units converts raw measured concentrations into canonical mg/L.
package units

import "fmt"

// Unit is a declared source unit for a measured concentration.
type Unit string

const (
	MgPerL Unit = "mg/L"
	PPM    Unit = "ppm"
	PPB    Unit = "ppb"
)

// ToMgPerL converts a value in the given source unit to mg/L.
// ppm is equivalent to mg/L for aqueous samples.
func ToMgPerL(value float64, unit Unit) (float64, error) {
	switch unit {
	case MgPerL, PPM:
		return value, nil
	case PPB:
		return value / 1000, nil
	default:
		return 0, fmt.Errorf("unknown unit %q", unit)
	}
}

// Optional converts an optional concentration, propagating absence.
// An unknown unit also yields absent rather than a bogus value.
func Optional(value *float64, unit Unit) *float64 {
	if value == nil {
		return nil
	}
	v, err := ToMgPerL(*value, unit)
	if err != nil {
		return nil
	}
	return &v
}
