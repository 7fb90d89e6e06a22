package calculator

import "github.com/guttosm/measure-pricing-service/internal/measurement"

// Default returns the settings a product starts with: every calculator type
// configured with the store's units, nothing enabled.
func Default(units UnitDefaults) *Settings {
	field := func(name measurement.Name, label, unit string) Field {
		return Field{Name: name, Label: label, Unit: unit, Editable: true, Options: []string{}}
	}
	pricing := func(unit string) Pricing {
		return Pricing{Unit: unit}
	}

	dim, area, vol, weight := units.Dimension, units.Area, units.Volume, units.Weight

	requiredLength := field(measurement.NameLength, "Required Length", dim)
	requiredLength.Enabled = true

	return &Settings{
		Type: TypeDisabled,
		Calculators: map[Type]Config{
			TypeDimension: {
				Pricing: pricing(dim),
				Fields: []Field{
					requiredLength,
					field(measurement.NameWidth, "Required Width", dim),
					field(measurement.NameHeight, "Required Height", dim),
				},
			},
			TypeArea: {
				Pricing: pricing(area),
				Fields:  []Field{field(measurement.NameArea, "Required Area", area)},
			},
			TypeAreaDimension: {
				Pricing: pricing(area),
				Fields: []Field{
					field(measurement.NameLength, "Length", dim),
					field(measurement.NameWidth, "Width", dim),
				},
			},
			TypeAreaLinear: {
				Pricing: pricing(dim),
				Fields: []Field{
					field(measurement.NameLength, "Length", dim),
					field(measurement.NameWidth, "Width", dim),
				},
			},
			TypeAreaSurface: {
				Pricing: pricing(area),
				Fields: []Field{
					field(measurement.NameLength, "Length", dim),
					field(measurement.NameWidth, "Width", dim),
					field(measurement.NameHeight, "Height", dim),
				},
			},
			TypeVolume: {
				Pricing: pricing(vol),
				Fields:  []Field{field(measurement.NameVolume, "Required Volume", vol)},
			},
			TypeVolumeDimension: {
				Pricing: pricing(vol),
				Fields: []Field{
					field(measurement.NameLength, "Length", dim),
					field(measurement.NameWidth, "Width", dim),
					field(measurement.NameHeight, "Height", dim),
				},
			},
			TypeVolumeArea: {
				Pricing: pricing(vol),
				Fields: []Field{
					field(measurement.NameArea, "Area", area),
					field(measurement.NameHeight, "Height", dim),
				},
			},
			TypeWeight: {
				Pricing: pricing(weight),
				Fields:  []Field{field(measurement.NameWeight, "Required Weight", weight)},
			},
			TypeWallDimension: {
				Pricing: pricing(area),
				Fields: []Field{
					field(measurement.NameLength, "Distance around your room", dim),
					field(measurement.NameWidth, "Height", dim),
				},
			},
		},
	}
}
