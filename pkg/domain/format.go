package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatMode selects how results are rendered on the display.
type FormatMode string

const (
	FormatGeneral    FormatMode = "general"    // up to 10 significant digits
	FormatFixed      FormatMode = "fixed"      // fixed decimal places
	FormatScientific FormatMode = "scientific" // mantissa with 6 decimals and exponent
)

// MaxFixedPlaces bounds DisplayFormat.Places in fixed mode.
const MaxFixedPlaces = 9

// DefaultFixedPlaces is the number of decimals used when fixed mode is entered.
const DefaultFixedPlaces = 2

// DisplayFormat is the result formatting setting of a session.
type DisplayFormat struct {
	Mode   FormatMode `json:"mode" yaml:"mode" mapstructure:"mode"`
	Places int        `json:"places,omitempty" yaml:"places,omitempty" mapstructure:"places"`
}

// GeneralFormat is the default display format.
var GeneralFormat = DisplayFormat{Mode: FormatGeneral}

// Format renders v according to the display format.
func (f DisplayFormat) Format(v float64) string {
	if v == 0 {
		// Normalise negative zero.
		v = 0
	}
	switch f.Mode {
	case FormatFixed:
		places := f.Places
		if places < 0 || places > MaxFixedPlaces {
			places = DefaultFixedPlaces
		}
		return strconv.FormatFloat(v, 'f', places, 64)
	case FormatScientific:
		return formatScientific(v)
	default:
		return FormatGeneralValue(v)
	}
}

// Next cycles General -> Fixed -> Scientific -> General, as the ENG key does.
func (f DisplayFormat) Next() DisplayFormat {
	switch f.Mode {
	case FormatGeneral, "":
		places := f.Places
		if places <= 0 || places > MaxFixedPlaces {
			places = DefaultFixedPlaces
		}
		return DisplayFormat{Mode: FormatFixed, Places: places}
	case FormatFixed:
		return DisplayFormat{Mode: FormatScientific, Places: f.Places}
	default:
		return DisplayFormat{Mode: FormatGeneral, Places: f.Places}
	}
}

// Indicator is the short display label of the format ("", "FIX", "SCI").
func (f DisplayFormat) Indicator() string {
	switch f.Mode {
	case FormatFixed:
		return "FIX"
	case FormatScientific:
		return "SCI"
	default:
		return ""
	}
}

// String returns the form accepted by ParseDisplayFormat.
func (f DisplayFormat) String() string {
	if f.Mode == FormatFixed {
		return fmt.Sprintf("fixed:%d", f.Places)
	}
	if f.Mode == "" {
		return string(FormatGeneral)
	}
	return string(f.Mode)
}

// ParseDisplayFormat parses "general", "scientific", "fixed" or "fixed:N".
func ParseDisplayFormat(s string) (DisplayFormat, error) {
	name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	switch FormatMode(name) {
	case FormatGeneral, "":
		return GeneralFormat, nil
	case FormatScientific:
		return DisplayFormat{Mode: FormatScientific}, nil
	case FormatFixed:
		places := DefaultFixedPlaces
		if hasArg {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 || n > MaxFixedPlaces {
				return DisplayFormat{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
			}
			places = n
		}
		return DisplayFormat{Mode: FormatFixed, Places: places}, nil
	}
	return DisplayFormat{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// FormatGeneralValue renders v with up to 10 significant digits, the shortest
// of plain or exponent notation, without trailing zeros.
func FormatGeneralValue(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// formatScientific renders a mantissa with 6 decimals and an exponent of at
// least two digits, e.g. 1.234500e+03.
func formatScientific(v float64) string {
	return strconv.FormatFloat(v, 'e', 6, 64)
}
