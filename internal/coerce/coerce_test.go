package coerce

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{"plain float", "12.5", 12.5, true},
		{"integer", "42", 42, true},
		{"leading and trailing spaces", "  7.25  ", 7.25, true},
		{"thousands separator", "1,234.5", 1234.5, true},
		{"embedded spaces", "78 .58", 78.58, true},
		{"non-breaking space", "12 34", 1234, true},
		{"negative passes through", "-0.5", -0.5, true},
		{"empty", "", 0, false},
		{"dash placeholder", "-", 0, false},
		{"nd placeholder", "ND", 0, false},
		{"lor placeholder", "LOR", 0, false},
		{"garbage", "abc", 0, false},
		{"unit noise", "12.5mg/L", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Value(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValueIdempotent(t *testing.T) {
	// Coercing an already-clean float and re-coercing its formatted output
	// must be a no-op.
	v, ok := Value("78.58")
	require.True(t, ok)
	again, ok := Value(strconv.FormatFloat(v, 'f', -1, 64))
	require.True(t, ok)
	assert.Equal(t, v, again)
}

func TestField(t *testing.T) {
	row := map[string]string{
		"Longitude": "77.59",
		"Latitude":  "-",
		"Year":      "twenty23",
	}

	v, ok := Field(row, "Longitude")
	require.True(t, ok)
	assert.Equal(t, 77.59, v)

	// Placeholder and unparseable cells are missing, not zero.
	_, ok = Field(row, "Latitude")
	assert.False(t, ok)
	_, ok = Field(row, "Year")
	assert.False(t, ok)
	_, ok = Field(row, "absent column")
	assert.False(t, ok)

	// Priority order: first coercible candidate wins.
	v, ok = Field(row, "Latitude", "Longitude")
	require.True(t, ok)
	assert.Equal(t, 77.59, v)
}

func TestOptionalField(t *testing.T) {
	row := map[string]string{"pH": "7.8", "F (mg/L)": "ND"}

	got := OptionalField(row, "pH")
	require.NotNil(t, got)
	assert.Equal(t, 7.8, *got)

	assert.Nil(t, OptionalField(row, "F (mg/L)"))
	assert.Nil(t, OptionalField(row, "Cl (mg/L)"))
}
