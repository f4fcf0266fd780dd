package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMgPerL(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		unit  Unit
		want  float64
	}{
		{"mg/L is identity", 0.3, MgPerL, 0.3},
		{"ppm equals mg/L for aqueous samples", 1.5, PPM, 1.5},
		{"ppb divides by 1000", 20, PPB, 0.02},
		{"ppb zero", 0, PPB, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMgPerL(tt.value, tt.unit)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	_, err := ToMgPerL(1, Unit("oz/gal"))
	assert.Error(t, err)
}

func TestOptional(t *testing.T) {
	assert.Nil(t, Optional(nil, PPB))

	v := 40.0
	got := Optional(&v, PPB)
	require.NotNil(t, got)
	assert.InDelta(t, 0.04, *got, 1e-12)

	assert.Nil(t, Optional(&v, Unit("bogus")))
}
