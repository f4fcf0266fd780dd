// Package coerce parses heterogeneous textual cell values into clean floats.
// It is the first line of defense against dirty input and never panics.
package coerce

import (
	"strconv"
	"strings"
)

// Placeholder tokens that mean "not measured" in source tables.
var missingTokens = map[string]struct{}{
	"":    {},
	"-":   {},
	"ND":  {},
	"LOR": {},
}

// Value parses a single raw cell into a float. The second return is false
// when the cell is empty, a placeholder token, or unparseable. Negative
// values pass through unchanged; clamping is a policy decision left to the
// index engine.
func Value(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if _, ok := missingTokens[s]; ok {
		return 0, false
	}
	// Thousands separators and embedded spaces show up in extracted
	// coordinate and concentration cells.
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Field fetches the first coercible numeric value from a row, trying the
// candidate column names in priority order.
func Field(row map[string]string, keys ...string) (float64, bool) {
	for _, k := range keys {
		raw, ok := row[k]
		if !ok {
			continue
		}
		if v, ok := Value(raw); ok {
			return v, true
		}
	}
	return 0, false
}

// OptionalField is like Field but returns nil for missing values, matching
// the record layer's pointer-means-unmeasured convention.
func OptionalField(row map[string]string, keys ...string) *float64 {
	if v, ok := Field(row, keys...); ok {
		return &v
	}
	return nil
}
