package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayFormat_Format(t *testing.T) {
	tests := []struct {
		name   string
		format DisplayFormat
		in     float64
		want   string
	}{
		{"general integer", GeneralFormat, 3, "3"},
		{"general fraction", GeneralFormat, 0.1 + 0.2, "0.3"},
		{"general significant digits", GeneralFormat, math.Pi, "3.141592654"},
		{"general large", GeneralFormat, 1e20, "1e+20"},
		{"general negative zero", GeneralFormat, math.Copysign(0, -1), "0"},
		{"fixed default", DisplayFormat{Mode: FormatFixed, Places: 2}, 3.14159, "3.14"},
		{"fixed zero places", DisplayFormat{Mode: FormatFixed, Places: 0}, 2.5, "2"},
		{"fixed out of range", DisplayFormat{Mode: FormatFixed, Places: 42}, 1, "1.00"},
		{"scientific", DisplayFormat{Mode: FormatScientific}, 1234.5, "1.234500e+03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.Format(tt.in))
		})
	}
}

func TestDisplayFormat_Next(t *testing.T) {
	f := GeneralFormat.Next()
	assert.Equal(t, DisplayFormat{Mode: FormatFixed, Places: DefaultFixedPlaces}, f)
	assert.Equal(t, "FIX", f.Indicator())

	f = f.Next()
	assert.Equal(t, FormatScientific, f.Mode)
	assert.Equal(t, "SCI", f.Indicator())

	f = f.Next()
	assert.Equal(t, FormatGeneral, f.Mode)
	assert.Empty(t, f.Indicator())
}

func TestParseDisplayFormat(t *testing.T) {
	f, err := ParseDisplayFormat("fixed:4")
	require.NoError(t, err)
	assert.Equal(t, DisplayFormat{Mode: FormatFixed, Places: 4}, f)
	assert.Equal(t, "fixed:4", f.String())

	f, err = ParseDisplayFormat("SCIENTIFIC")
	require.NoError(t, err)
	assert.Equal(t, FormatScientific, f.Mode)

	_, err = ParseDisplayFormat("fixed:12")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ParseDisplayFormat("hex")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
