package entity

import (
	"fmt"
	"strconv"
)

// SampleKind tags which kind of sample a computed index refers to.
type SampleKind string

const (
	// SampleKindGroundWater references an ingested ground-water sample,
	// keyed by its serial number.
	SampleKindGroundWater SampleKind = "ground_water"
	// SampleKindGeneric references an ad hoc sample supplied by a caller,
	// keyed by its external sample identifier.
	SampleKindGeneric SampleKind = "generic"
)

// SampleRef is a tagged reference to exactly one sample variant. Exactly one
// of SerialNumber (ground_water) or SampleID (generic) is meaningful; switch
// on Kind at every consumer.
type SampleRef struct {
	Kind         SampleKind `json:"kind"`
	SerialNumber int        `json:"serial_number,omitempty"`
	SampleID     string     `json:"sample_id,omitempty"`
}

// GroundWaterRef builds a reference to an ingested ground-water sample.
func GroundWaterRef(serialNumber int) SampleRef {
	return SampleRef{Kind: SampleKindGroundWater, SerialNumber: serialNumber}
}

// GenericRef builds a reference to a caller-supplied sample.
func GenericRef(sampleID string) SampleRef {
	return SampleRef{Kind: SampleKindGeneric, SampleID: sampleID}
}

// Key returns the storage key for the referenced sample.
func (r SampleRef) Key() string {
	switch r.Kind {
	case SampleKindGroundWater:
		return strconv.Itoa(r.SerialNumber)
	case SampleKindGeneric:
		return r.SampleID
	default:
		return ""
	}
}

// Display returns a human-readable label for the referenced sample.
func (r SampleRef) Display() string {
	switch r.Kind {
	case SampleKindGroundWater:
		return fmt.Sprintf("Sample %d", r.SerialNumber)
	case SampleKindGeneric:
		return fmt.Sprintf("Sample %s", r.SampleID)
	default:
		return "Sample (unknown)"
	}
}
