package calculator

import (
	"errors"
	"fmt"

	"github.com/guttosm/measure-pricing-service/internal/measurement"
)

var (
	// ErrUnknownType is returned when a calculator type string is not recognised.
	ErrUnknownType = errors.New("unknown calculator type")
	// ErrCalculatorDisabled is returned when an operation requires an enabled calculator.
	ErrCalculatorDisabled = errors.New("calculator is disabled")
)

// Type identifies a calculator and its input field schema.
type Type string

const (
	TypeDisabled        Type = ""
	TypeDimension       Type = "dimension"
	TypeArea            Type = "area"
	TypeAreaDimension   Type = "area-dimension"
	TypeAreaLinear      Type = "area-linear"
	TypeAreaSurface     Type = "area-surface"
	TypeVolume          Type = "volume"
	TypeVolumeDimension Type = "volume-dimension"
	TypeVolumeArea      Type = "volume-area"
	TypeWeight          Type = "weight"
	TypeWallDimension   Type = "wall-dimension"
)

var allTypes = []Type{
	TypeDimension,
	TypeArea,
	TypeAreaDimension,
	TypeAreaLinear,
	TypeAreaSurface,
	TypeVolume,
	TypeVolumeDimension,
	TypeVolumeArea,
	TypeWeight,
	TypeWallDimension,
}

// Types returns every enabled calculator type in display order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

// ParseType validates s. The empty string parses to TypeDisabled.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if t == TypeDisabled || t.Valid() {
		return t, nil
	}
	return TypeDisabled, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Valid reports whether t is one of the enabled calculator types.
func (t Type) Valid() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Fields returns the input fields of the type in schema order.
func (t Type) Fields() []measurement.Name {
	switch t {
	case TypeDimension, TypeAreaSurface, TypeVolumeDimension:
		return []measurement.Name{measurement.NameLength, measurement.NameWidth, measurement.NameHeight}
	case TypeArea:
		return []measurement.Name{measurement.NameArea}
	case TypeAreaDimension, TypeAreaLinear, TypeWallDimension:
		return []measurement.Name{measurement.NameLength, measurement.NameWidth}
	case TypeVolume:
		return []measurement.Name{measurement.NameVolume}
	case TypeVolumeArea:
		return []measurement.Name{measurement.NameArea, measurement.NameHeight}
	case TypeWeight:
		return []measurement.Name{measurement.NameWeight}
	case TypeDisabled:
		return nil
	}
	return nil
}

// HasField reports whether name belongs to the type's schema.
func (t Type) HasField(name measurement.Name) bool {
	for _, f := range t.Fields() {
		if f == name {
			return true
		}
	}
	return false
}

// Derived reports whether the type combines several inputs into one measurement.
func (t Type) Derived() bool {
	switch t {
	case TypeAreaDimension, TypeAreaLinear, TypeAreaSurface, TypeVolumeDimension, TypeVolumeArea, TypeWallDimension:
		return true
	}
	return false
}

// ResultName is the role of the measurement a calculation of this type
// produces. For TypeDimension it depends on which field is enabled, so
// the enabled field name must be supplied.
func (t Type) ResultName(enabled measurement.Name) measurement.Name {
	switch t {
	case TypeDimension:
		if enabled == "" {
			return measurement.NameLength
		}
		return enabled
	case TypeArea, TypeAreaDimension, TypeAreaSurface, TypeWallDimension:
		return measurement.NameArea
	case TypeAreaLinear:
		return measurement.NameLength
	case TypeVolume, TypeVolumeDimension, TypeVolumeArea:
		return measurement.NameVolume
	case TypeWeight:
		return measurement.NameWeight
	}
	return ""
}
