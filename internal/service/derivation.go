package service

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/measurement"
	"github.com/guttosm/measure-pricing-service/internal/metrics"
)

// Seam names the derived value a Transform is asked to adjust.
type Seam string

const (
	SeamDimension   Seam = "dimension"
	SeamArea        Seam = "area"
	SeamPerimeter   Seam = "perimeter"
	SeamSurfaceArea Seam = "surface_area"
	SeamVolume      Seam = "volume"
)

// Transform adjusts a computed value before it is wrapped in a measurement.
// Explicit overrides stored on the product are not passed through it.
type Transform func(seam Seam, value float64, dims model.Dimensions) float64

func identity(_ Seam, value float64, _ model.Dimensions) float64 { return value }

// volumeScale lands L×W×H computed in very small or very large dimension
// units in a volume unit the conversion tables cover.
var volumeScale = map[string]struct {
	factor float64
	unit   string
}{
	"mm": {factor: 0.001, unit: "ml"},
	"km": {factor: 1e9, unit: measurement.CubicMeter},
	"mi": {factor: 5451776000, unit: "cu. yd."},
}

// DerivationInput is everything needed to derive a product's measurement.
type DerivationInput struct {
	Type calculator.Type
	// Enabled is the enabled field of a dimension calculator.
	Enabled    measurement.Name
	Dimensions model.Dimensions
	Units      calculator.UnitDefaults
}

// Deriver computes the measurement a product represents for a calculator
// type, from its catalog dimensions.
type Deriver struct {
	converter measurement.Converter
	transform Transform
}

// DeriverOption configures a Deriver.
type DeriverOption func(*Deriver)

// WithTransform installs a value transform. Nil restores the identity.
func WithTransform(fn Transform) DeriverOption {
	return func(d *Deriver) {
		if fn == nil {
			fn = identity
		}
		d.transform = fn
	}
}

// WithStrictConversion makes missing conversion paths an error.
func WithStrictConversion(strict bool) DeriverOption {
	return func(d *Deriver) {
		d.converter = measurement.NewConverter(strict)
	}
}

func NewDeriver(opts ...DeriverOption) *Deriver {
	d := &Deriver{
		converter: measurement.NewConverter(false),
		transform: identity,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Strict reports whether the deriver rejects missing conversion paths.
func (d *Deriver) Strict() bool {
	return d.converter.Strict()
}

// Derive returns the product measurement for in.Type. Missing dimensions
// derive a zero measurement, never nil.
func (d *Deriver) Derive(in DerivationInput) (*measurement.Measurement, error) {
	switch in.Type {
	case calculator.TypeDimension:
		return d.dimension(in), nil
	case calculator.TypeArea, calculator.TypeAreaDimension, calculator.TypeWallDimension:
		return d.area(in)
	case calculator.TypeAreaLinear:
		return d.perimeter(in), nil
	case calculator.TypeAreaSurface:
		return d.surfaceArea(in)
	case calculator.TypeVolume, calculator.TypeVolumeDimension, calculator.TypeVolumeArea:
		return d.volume(in)
	case calculator.TypeWeight:
		return measurement.NewNamed(measurement.NameWeight, "Weight", in.Units.Weight, value(in.Dimensions.Weight)), nil
	case calculator.TypeDisabled:
		return nil, calculator.ErrCalculatorDisabled
	}
	return nil, fmt.Errorf("%w: %q", calculator.ErrUnknownType, in.Type)
}

func (d *Deriver) dimension(in DerivationInput) *measurement.Measurement {
	name := in.Type.ResultName(in.Enabled)
	var raw *float64
	switch name {
	case measurement.NameWidth:
		raw = in.Dimensions.Width
	case measurement.NameHeight:
		raw = in.Dimensions.Height
	default:
		raw = in.Dimensions.Length
	}
	v := raw
	if v != nil {
		adjusted := d.transform(SeamDimension, *v, in.Dimensions)
		v = &adjusted
	}
	label := strings.ToUpper(string(name[:1])) + string(name[1:])
	return measurement.NewNamed(name, label, in.Units.Dimension, value(v))
}

// area prefers the explicit area override over length × width.
func (d *Deriver) area(in DerivationInput) (*measurement.Measurement, error) {
	dims := in.Dimensions
	if set(dims.Area) {
		return measurement.NewNamed(measurement.NameArea, "Area", in.Units.Area, *dims.Area), nil
	}
	if dims.Length == nil || dims.Width == nil {
		return measurement.NewNamed(measurement.NameArea, "Area", in.Units.Area, 0), nil
	}
	area := d.transform(SeamArea, *dims.Length * *dims.Width, dims)
	m := measurement.NewNamed(measurement.NameArea, "Area", measurement.ToAreaUnit(in.Units.Dimension), area)
	return d.convert(m, in.Units.Area)
}

func (d *Deriver) perimeter(in DerivationInput) *measurement.Measurement {
	dims := in.Dimensions
	var perimeter float64
	if dims.Length != nil && dims.Width != nil {
		l, w := *dims.Length, *dims.Width
		perimeter = d.transform(SeamPerimeter, 2*l+2*w, dims)
	}
	return measurement.NewNamed(measurement.NameLength, "Perimeter", in.Units.Dimension, perimeter)
}

func (d *Deriver) surfaceArea(in DerivationInput) (*measurement.Measurement, error) {
	dims := in.Dimensions
	if dims.Length == nil || dims.Width == nil || dims.Height == nil {
		return measurement.NewNamed(measurement.NameArea, "Surface Area", in.Units.Area, 0), nil
	}
	l, w, h := *dims.Length, *dims.Width, *dims.Height
	surface := d.transform(SeamSurfaceArea, 2*(l*w+w*h+l*h), dims)
	m := measurement.NewNamed(measurement.NameArea, "Surface Area", measurement.ToAreaUnit(in.Units.Dimension), surface)
	return d.convert(m, in.Units.Area)
}

// volume prefers the explicit override, then area override × height, then
// length × width × height.
func (d *Deriver) volume(in DerivationInput) (*measurement.Measurement, error) {
	dims := in.Dimensions
	if set(dims.Volume) {
		return measurement.NewNamed(measurement.NameVolume, "Volume", in.Units.Volume, *dims.Volume), nil
	}

	if set(dims.Area) && dims.Height != nil {
		area := measurement.New(in.Units.Area, *dims.Area)
		height := measurement.NewNamed(measurement.NameHeight, "", in.Units.Dimension, *dims.Height)
		height.SetCommonUnit(area.UnitCommon())

		volume := d.transform(SeamVolume, area.ValueCommon()*height.ValueCommon(), dims)
		unit := measurement.ToVolumeUnit(area.UnitCommon())
		return d.convert(measurement.NewNamed(measurement.NameVolume, "Volume", unit, volume), in.Units.Volume)
	}

	if dims.Length != nil && dims.Width != nil && dims.Height != nil {
		volume := *dims.Length * *dims.Width * *dims.Height
		unit := measurement.ToVolumeUnit(in.Units.Dimension)
		if scale, ok := volumeScale[in.Units.Dimension]; ok {
			volume *= scale.factor
			unit = scale.unit
		}
		volume = d.transform(SeamVolume, volume, dims)
		return d.convert(measurement.NewNamed(measurement.NameVolume, "Volume", unit, volume), in.Units.Volume)
	}

	return measurement.NewNamed(measurement.NameVolume, "Volume", in.Units.Volume, 0), nil
}

// convert returns m expressed in unit under the deriver's conversion policy.
func (d *Deriver) convert(m *measurement.Measurement, unit string) (*measurement.Measurement, error) {
	v, err := convertValue(d.converter, m.Value(), m.Unit(), unit)
	if err != nil {
		return nil, err
	}
	if v.converted {
		return measurement.NewNamed(m.Name(), m.Label(), unit, v.value), nil
	}
	return m, nil
}

type conversion struct {
	value     float64
	converted bool
}

// convertValue runs one conversion and records its outcome.
func convertValue(c measurement.Converter, value float64, from, to string) (conversion, error) {
	if from == to || to == "" {
		return conversion{value: value, converted: true}, nil
	}
	v, found, err := c.Convert(value, from, to)
	switch {
	case err != nil:
		metrics.RecordConversion(metrics.ConversionRejected)
		log.Warn().Str("from_unit", from).Str("to_unit", to).Msg("conversion rejected")
		return conversion{}, err
	case !found:
		metrics.RecordConversion(metrics.ConversionPassThrough)
		return conversion{value: v}, nil
	}
	metrics.RecordConversion(metrics.ConversionConverted)
	return conversion{value: v, converted: true}, nil
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// set reports whether an override carries a non-zero value.
func set(v *float64) bool {
	return v != nil && *v != 0
}
