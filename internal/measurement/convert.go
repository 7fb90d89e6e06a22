package measurement

import (
	"errors"
	"fmt"
)

// ErrUnsupportedConversion is returned when no conversion path exists between two units.
var ErrUnsupportedConversion = errors.New("unsupported unit conversion")

// Convert converts value from one unit to another in two hops: from the unit
// to its standard unit, then from the standard unit to the target. When no
// complete path exists the value is returned unchanged.
func Convert(value float64, from, to string) float64 {
	converted, err := TryConvert(value, from, to)
	if err != nil {
		return value
	}
	return converted
}

// TryConvert is Convert that reports a missing path instead of passing the value through.
func TryConvert(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}

	t := getTables()

	norm, ok := t.normalize[from]
	if !ok {
		return value, fmt.Errorf("%w: %q to %q", ErrUnsupportedConversion, from, to)
	}
	conv, ok := t.conversion[norm.unit][to]
	if !ok {
		return value, fmt.Errorf("%w: %q to %q", ErrUnsupportedConversion, from, to)
	}

	standard := value
	if norm.inverse {
		standard /= norm.factor
	} else {
		standard *= norm.factor
	}

	if conv.inverse {
		return standard / conv.factor, nil
	}
	return standard * conv.factor, nil
}

// Converter converts values under a fixed policy for missing conversion paths.
// A strict converter rejects them; a lenient one passes the value through.
type Converter struct {
	strict bool
}

// NewConverter returns a Converter. Strict converters return ErrUnsupportedConversion.
func NewConverter(strict bool) Converter {
	return Converter{strict: strict}
}

// Strict reports whether missing paths are rejected.
func (c Converter) Strict() bool {
	return c.strict
}

// Convert converts value between units according to the converter's policy.
// The boolean result reports whether a conversion path was found.
func (c Converter) Convert(value float64, from, to string) (float64, bool, error) {
	converted, err := TryConvert(value, from, to)
	if err == nil {
		return converted, true, nil
	}
	if c.strict {
		return value, false, err
	}
	return value, false, nil
}
