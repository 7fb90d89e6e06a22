package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/measurement"
	"github.com/guttosm/measure-pricing-service/internal/metrics"
)

// DefaultPrecision is the number of decimals totals are rounded to.
const DefaultPrecision = 3

// ErrNoCalculatorInputs is returned for a calculator without enabled fields.
var ErrNoCalculatorInputs = errors.New("calculator has no enabled inputs")

// Combiner folds validated calculator inputs into one total measurement.
type Combiner struct {
	precision int32
	converter measurement.Converter
}

// NewCombiner returns a Combiner rounding to precision decimals. A negative
// precision falls back to DefaultPrecision.
func NewCombiner(precision int, strict bool) *Combiner {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Combiner{precision: int32(precision), converter: measurement.NewConverter(strict)}
}

// Total combines inputs, as returned by Settings.ReadInputs, and expresses
// the result in the pricing unit when pricing is enabled, otherwise in the
// calculator's common unit.
func (c *Combiner) Total(settings *calculator.Settings, inputs []*measurement.Measurement) (*measurement.Measurement, error) {
	t := settings.CalculatorType()
	if t == calculator.TypeDisabled {
		return nil, calculator.ErrCalculatorDisabled
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%s calculator: %w", t, ErrNoCalculatorInputs)
	}

	name := t.ResultName(settings.EnabledDimension())
	var (
		total float64
		unit  string
	)

	switch t {
	case calculator.TypeDimension, calculator.TypeArea, calculator.TypeVolume, calculator.TypeWeight:
		total, unit = inputs[0].Value(), inputs[0].Unit()
	case calculator.TypeAreaSurface:
		total, unit = surface(inputs), settings.ResultCommonUnit()
	case calculator.TypeAreaLinear:
		for _, m := range inputs {
			total += 2 * m.ValueCommon()
		}
		unit = settings.ResultCommonUnit()
	case calculator.TypeAreaDimension, calculator.TypeWallDimension,
		calculator.TypeVolumeDimension, calculator.TypeVolumeArea:
		total = inputs[0].ValueCommon()
		for _, m := range inputs[1:] {
			total *= m.ValueCommon()
		}
		unit = settings.ResultCommonUnit()
	default:
		return nil, fmt.Errorf("%w: %q", calculator.ErrUnknownType, t)
	}

	if to := settings.PricingUnit(); to != "" {
		v, err := convertValue(c.converter, total, unit, to)
		if err != nil {
			return nil, fmt.Errorf("total to pricing unit: %w", err)
		}
		if v.converted {
			total, unit = v.value, to
		}
	}

	metrics.RecordTotalMeasurement(string(t))
	return measurement.NewNamed(name, "", unit, c.round(total)), nil
}

// surface is 2(LW + WH + LH) over the common-unit values.
func surface(inputs []*measurement.Measurement) float64 {
	var l, w, h float64
	for _, m := range inputs {
		switch m.Name() {
		case measurement.NameLength:
			l = m.ValueCommon()
		case measurement.NameWidth:
			w = m.ValueCommon()
		case measurement.NameHeight:
			h = m.ValueCommon()
		}
	}
	return 2 * (l*w + w*h + l*h)
}

func (c *Combiner) round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(c.precision).InexactFloat64()
}

// Overage pairs a total before and after the overage percentage is applied.
type Overage struct {
	// Percent is the overage as a fraction.
	Percent  float64 `json:"percent"`
	Original float64 `json:"original"`
	Amount   float64 `json:"amount"`
	Total    float64 `json:"total"`
}

// ApplyOverage adds percent of total to it, for a new order.
func (c *Combiner) ApplyOverage(total, percent float64) Overage {
	if percent <= 0 {
		return Overage{Original: total, Total: total}
	}
	amount := c.round(total * percent)
	return Overage{
		Percent:  percent,
		Original: total,
		Amount:   amount,
		Total:    c.round(total + amount),
	}
}

// RemoveOverage recovers the original total from one stored with percent
// overage already applied, for reorders.
func (c *Combiner) RemoveOverage(stored, percent float64) Overage {
	if percent <= 0 {
		return Overage{Original: stored, Total: stored}
	}
	original := c.round(stored / (1 + percent))
	return Overage{
		Percent:  percent,
		Original: original,
		Amount:   c.round(stored - original),
		Total:    stored,
	}
}
