package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/measurement"
)

var feet = calculator.UnitDefaults{Dimension: "ft", Area: "sq. ft.", Volume: "cu. ft.", Weight: "lbs"}

func f(v float64) *float64 { return &v }

func TestDeriver_Derive(t *testing.T) {
	metric := calculator.UnitDefaults{Dimension: "mm", Area: "sq m", Volume: "ml", Weight: "kg"}
	inches := calculator.UnitDefaults{Dimension: "in", Area: "sq. ft.", Volume: "cu. ft.", Weight: "lbs"}

	tests := []struct {
		name      string
		in        DerivationInput
		wantName  measurement.Name
		wantLabel string
		wantValue float64
		wantUnit  string
	}{
		{
			name:      "area from length and width",
			in:        DerivationInput{Type: calculator.TypeArea, Dimensions: model.Dimensions{Length: f(4), Width: f(5)}, Units: feet},
			wantName:  measurement.NameArea,
			wantLabel: "Area",
			wantValue: 20,
			wantUnit:  "sq. ft.",
		},
		{
			name:      "area override wins over length and width",
			in:        DerivationInput{Type: calculator.TypeAreaDimension, Dimensions: model.Dimensions{Length: f(4), Width: f(5), Area: f(25)}, Units: feet},
			wantName:  measurement.NameArea,
			wantLabel: "Area",
			wantValue: 25,
			wantUnit:  "sq. ft.",
		},
		{
			name:      "area converted to store area unit",
			in:        DerivationInput{Type: calculator.TypeWallDimension, Dimensions: model.Dimensions{Length: f(12), Width: f(24)}, Units: inches},
			wantName:  measurement.NameArea,
			wantLabel: "Area",
			wantValue: 2,
			wantUnit:  "sq. ft.",
		},
		{
			name:      "area without dimensions is zero",
			in:        DerivationInput{Type: calculator.TypeArea, Dimensions: model.Dimensions{Length: f(4)}, Units: feet},
			wantName:  measurement.NameArea,
			wantLabel: "Area",
			wantValue: 0,
			wantUnit:  "sq. ft.",
		},
		{
			name:      "perimeter",
			in:        DerivationInput{Type: calculator.TypeAreaLinear, Dimensions: model.Dimensions{Length: f(3), Width: f(4)}, Units: feet},
			wantName:  measurement.NameLength,
			wantLabel: "Perimeter",
			wantValue: 14,
			wantUnit:  "ft",
		},
		{
			name:      "surface area",
			in:        DerivationInput{Type: calculator.TypeAreaSurface, Dimensions: model.Dimensions{Length: f(1), Width: f(2), Height: f(3)}, Units: feet},
			wantName:  measurement.NameArea,
			wantLabel: "Surface Area",
			wantValue: 22,
			wantUnit:  "sq. ft.",
		},
		{
			name:      "surface area needs all three dimensions",
			in:        DerivationInput{Type: calculator.TypeAreaSurface, Dimensions: model.Dimensions{Length: f(1), Width: f(2)}, Units: feet},
			wantName:  measurement.NameArea,
			wantLabel: "Surface Area",
			wantValue: 0,
			wantUnit:  "sq. ft.",
		},
		{
			name:      "volume from three dimensions",
			in:        DerivationInput{Type: calculator.TypeVolume, Dimensions: model.Dimensions{Length: f(2), Width: f(3), Height: f(4)}, Units: feet},
			wantName:  measurement.NameVolume,
			wantLabel: "Volume",
			wantValue: 24,
			wantUnit:  "cu. ft.",
		},
		{
			name:      "volume override wins",
			in:        DerivationInput{Type: calculator.TypeVolumeDimension, Dimensions: model.Dimensions{Length: f(2), Width: f(3), Height: f(4), Volume: f(10)}, Units: feet},
			wantName:  measurement.NameVolume,
			wantLabel: "Volume",
			wantValue: 10,
			wantUnit:  "cu. ft.",
		},
		{
			name:      "volume from area override and height",
			in:        DerivationInput{Type: calculator.TypeVolumeArea, Dimensions: model.Dimensions{Area: f(6), Height: f(2)}, Units: feet},
			wantName:  measurement.NameVolume,
			wantLabel: "Volume",
			wantValue: 12,
			wantUnit:  "cu. ft.",
		},
		{
			name:      "area override and height win over three dimensions",
			in:        DerivationInput{Type: calculator.TypeVolumeArea, Dimensions: model.Dimensions{Length: f(1), Width: f(1), Height: f(2), Area: f(10)}, Units: feet},
			wantName:  measurement.NameVolume,
			wantLabel: "Volume",
			wantValue: 20,
			wantUnit:  "cu. ft.",
		},
		{
			name:      "millimetre volume scaled to millilitres",
			in:        DerivationInput{Type: calculator.TypeVolume, Dimensions: model.Dimensions{Length: f(10), Width: f(10), Height: f(10)}, Units: metric},
			wantName:  measurement.NameVolume,
			wantLabel: "Volume",
			wantValue: 1,
			wantUnit:  "ml",
		},
		{
			name:      "weight",
			in:        DerivationInput{Type: calculator.TypeWeight, Dimensions: model.Dimensions{Weight: f(2.5)}, Units: feet},
			wantName:  measurement.NameWeight,
			wantLabel: "Weight",
			wantValue: 2.5,
			wantUnit:  "lbs",
		},
		{
			name:      "dimension uses the enabled field",
			in:        DerivationInput{Type: calculator.TypeDimension, Enabled: measurement.NameWidth, Dimensions: model.Dimensions{Length: f(4), Width: f(7)}, Units: feet},
			wantName:  measurement.NameWidth,
			wantLabel: "Width",
			wantValue: 7,
			wantUnit:  "ft",
		},
		{
			name:      "dimension defaults to length",
			in:        DerivationInput{Type: calculator.TypeDimension, Dimensions: model.Dimensions{Length: f(4)}, Units: feet},
			wantName:  measurement.NameLength,
			wantLabel: "Length",
			wantValue: 4,
			wantUnit:  "ft",
		},
	}

	d := NewDeriver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := d.Derive(tt.in)
			require.NoError(t, err)
			require.NotNil(t, m)
			assert.Equal(t, tt.wantName, m.Name())
			assert.Equal(t, tt.wantLabel, m.Label())
			assert.InDelta(t, tt.wantValue, m.Value(), 1e-9)
			assert.Equal(t, tt.wantUnit, m.Unit())
		})
	}
}

func TestDeriver_Transform(t *testing.T) {
	var seen []Seam
	d := NewDeriver(WithTransform(func(seam Seam, value float64, _ model.Dimensions) float64 {
		seen = append(seen, seam)
		return value * 2
	}))

	m, err := d.Derive(DerivationInput{Type: calculator.TypeArea, Dimensions: model.Dimensions{Length: f(4), Width: f(5)}, Units: feet})
	require.NoError(t, err)
	assert.Equal(t, 40.0, m.Value())

	// overrides bypass the transform
	m, err = d.Derive(DerivationInput{Type: calculator.TypeArea, Dimensions: model.Dimensions{Area: f(25)}, Units: feet})
	require.NoError(t, err)
	assert.Equal(t, 25.0, m.Value())

	assert.Equal(t, []Seam{SeamArea}, seen)
}

func TestDeriver_ConversionPolicy(t *testing.T) {
	units := feet
	units.Area = "lbs"
	in := DerivationInput{Type: calculator.TypeArea, Dimensions: model.Dimensions{Length: f(4), Width: f(5)}, Units: units}

	t.Run("lenient passes the value through", func(t *testing.T) {
		m, err := NewDeriver().Derive(in)
		require.NoError(t, err)
		assert.Equal(t, 20.0, m.Value())
		assert.Equal(t, "sq. ft.", m.Unit())
	})

	t.Run("strict rejects", func(t *testing.T) {
		d := NewDeriver(WithStrictConversion(true))
		assert.True(t, d.Strict())
		_, err := d.Derive(in)
		assert.ErrorIs(t, err, measurement.ErrUnsupportedConversion)
	})
}

func TestDeriver_Errors(t *testing.T) {
	d := NewDeriver()

	_, err := d.Derive(DerivationInput{Type: calculator.TypeDisabled, Units: feet})
	assert.ErrorIs(t, err, calculator.ErrCalculatorDisabled)

	_, err = d.Derive(DerivationInput{Type: calculator.Type("hexagon"), Units: feet})
	assert.ErrorIs(t, err, calculator.ErrUnknownType)
}
