package calculator

import (
	"github.com/guttosm/measure-pricing-service/internal/measurement"
)

// AcceptedInput controls whether a field takes any value or one of its options.
type AcceptedInput string

const (
	AcceptedInputUnset   AcceptedInput = ""
	AcceptedInputFree    AcceptedInput = "free"
	AcceptedInputLimited AcceptedInput = "limited"
)

// UnitDefaults are the store-wide units new calculators start from.
type UnitDefaults struct {
	Dimension string `json:"dimension_unit" bson:"dimension_unit" msgpack:"dimension_unit"`
	Area      string `json:"area_unit" bson:"area_unit" msgpack:"area_unit"`
	Volume    string `json:"volume_unit" bson:"volume_unit" msgpack:"volume_unit"`
	Weight    string `json:"weight_unit" bson:"weight_unit" msgpack:"weight_unit"`
}

// InputAttributes bound a free-input field. Zero means unset.
type InputAttributes struct {
	Min  float64 `json:"min,omitempty" msgpack:"min"`
	Max  float64 `json:"max,omitempty" msgpack:"max"`
	Step float64 `json:"step,omitempty" msgpack:"step"`
}

// IsZero reports whether no bound is set.
func (a InputAttributes) IsZero() bool {
	return a.Min == 0 && a.Max == 0 && a.Step == 0
}

// Field is the configuration of one calculator input.
type Field struct {
	Name       measurement.Name `msgpack:"name"`
	Label      string           `msgpack:"label"`
	Unit       string           `msgpack:"unit"`
	Editable   bool             `msgpack:"editable"`
	Enabled    bool             `msgpack:"enabled"`
	Accepted   AcceptedInput    `msgpack:"accepted_input"`
	Options    []string         `msgpack:"options"`
	Attributes *InputAttributes `msgpack:"input_attributes"`
}

// Pricing is the pricing block of a calculator.
type Pricing struct {
	Enabled           bool    `msgpack:"enabled"`
	Label             string  `msgpack:"label"`
	Unit              string  `msgpack:"unit"`
	CalculatorEnabled bool    `msgpack:"calculator"`
	InventoryEnabled  bool    `msgpack:"inventory"`
	WeightEnabled     bool    `msgpack:"weight"`
	OveragePercent    float64 `msgpack:"overage"`
}

// Config holds one calculator type's pricing block and fields in schema order.
type Config struct {
	Pricing Pricing `msgpack:"pricing"`
	Fields  []Field `msgpack:"fields"`
}

// Field returns the named field, or nil.
func (c *Config) Field(name measurement.Name) *Field {
	if c == nil {
		return nil
	}
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// Settings are a product's calculator settings after migration.
//
// Settings are treated as immutable once loaded; callers that cache them
// must hand out copies.
type Settings struct {
	Type        Type            `msgpack:"calculator_type"`
	Calculators map[Type]Config `msgpack:"calculators"`
}

func (s *Settings) active() *Config {
	if s == nil || s.Type == TypeDisabled {
		return nil
	}
	cfg, ok := s.Calculators[s.Type]
	if !ok {
		return nil
	}
	return &cfg
}

// Active returns the configuration of the selected calculator type, if any.
func (s *Settings) Active() (Config, bool) {
	cfg := s.active()
	if cfg == nil {
		return Config{}, false
	}
	return *cfg, true
}

// CalculatorType returns the selected calculator type.
func (s *Settings) CalculatorType() Type {
	if s == nil {
		return TypeDisabled
	}
	return s.Type
}

func (s *Settings) IsCalculatorEnabled() bool {
	return s.CalculatorType() != TypeDisabled
}

// IsDerived reports whether the selected calculator combines several inputs.
func (s *Settings) IsDerived() bool {
	return s.CalculatorType().Derived()
}

func (s *Settings) IsPricingEnabled() bool {
	cfg := s.active()
	return cfg != nil && cfg.Pricing.Enabled
}

// IsPricingCalculatorEnabled reports the "customer supplies a measurement,
// price is per unit" mode.
func (s *Settings) IsPricingCalculatorEnabled() bool {
	return s.IsPricingEnabled() && s.active().Pricing.CalculatorEnabled
}

// IsQuantityCalculatorEnabled reports the "customer enters a need, we compute
// order quantity" mode. It is never true together with IsPricingCalculatorEnabled.
func (s *Settings) IsQuantityCalculatorEnabled() bool {
	return s.IsCalculatorEnabled() && !s.IsPricingCalculatorEnabled()
}

func (s *Settings) IsPricingInventoryEnabled() bool {
	return s.IsPricingCalculatorEnabled() && s.active().Pricing.InventoryEnabled
}

func (s *Settings) IsPricingCalculatedWeightEnabled() bool {
	return s.IsPricingCalculatorEnabled() && s.active().Pricing.WeightEnabled
}

// PricingUnit is the unit prices and rule ranges are expressed in, or ""
// when pricing is disabled.
func (s *Settings) PricingUnit() string {
	if !s.IsPricingEnabled() {
		return ""
	}
	return s.active().Pricing.Unit
}

// PricingLabel defaults to the pricing unit when no label is configured.
func (s *Settings) PricingLabel() string {
	if !s.IsPricingEnabled() {
		return ""
	}
	p := s.active().Pricing
	if p.Label != "" {
		return p.Label
	}
	return p.Unit
}

// PricingOverage returns the overage as a fraction in [0, 1].
func (s *Settings) PricingOverage() float64 {
	if !s.IsPricingEnabled() {
		return 0
	}
	overage := s.active().Pricing.OveragePercent / 100
	switch {
	case overage < 0:
		return 0
	case overage > 1:
		return 1
	}
	return overage
}

// AcceptedInput returns the input mode of a field. Records without the flag
// are limited when they carry options.
func (s *Settings) AcceptedInput(name measurement.Name) AcceptedInput {
	f := s.active().Field(name)
	if f == nil {
		return AcceptedInputFree
	}
	if f.Accepted == AcceptedInputUnset {
		if len(f.Options) > 0 {
			return AcceptedInputLimited
		}
		return AcceptedInputFree
	}
	return f.Accepted
}

// InputAttributes returns the numeric bounds of a free-input field. The
// boolean is false when the field is limited, carries no explicit input mode,
// or has no bounds.
func (s *Settings) InputAttributes(name measurement.Name) (InputAttributes, bool) {
	f := s.active().Field(name)
	if f == nil || f.Accepted != AcceptedInputFree || f.Attributes == nil {
		return InputAttributes{}, false
	}
	if f.Attributes.IsZero() {
		return InputAttributes{}, false
	}
	return *f.Attributes, true
}

// Options returns the choices of a field keyed by their parsed value. Options
// are only offered in pricing-calculator mode. A repeated value keeps its
// first position and takes the last label.
func (s *Settings) Options(name measurement.Name) []measurement.Option {
	if !s.IsPricingCalculatorEnabled() {
		return nil
	}
	f := s.active().Field(name)
	if f == nil {
		return nil
	}

	var options []measurement.Option
	index := make(map[float64]int, len(f.Options))
	for _, raw := range f.Options {
		if raw == "" {
			continue
		}
		v := measurement.ConvertToFloat(raw)
		if i, ok := index[v]; ok {
			options[i].Label = raw
			continue
		}
		index[v] = len(options)
		options = append(options, measurement.Option{Value: v, Label: raw})
	}
	return options
}

// CalculatorMeasurements returns the input measurements of the selected
// calculator, each with value 1. The dimension calculator returns only its
// enabled field. Other calculators return every field, with the common unit
// of the first propagated to the rest so they can be multiplied together.
func (s *Settings) CalculatorMeasurements() []*measurement.Measurement {
	cfg := s.active()
	if cfg == nil {
		return nil
	}

	var out []*measurement.Measurement
	if s.Type == TypeDimension {
		for _, f := range cfg.Fields {
			if f.Enabled {
				out = append(out, s.newInput(f))
			}
		}
		return out
	}

	var common string
	for _, f := range cfg.Fields {
		m := s.newInput(f)
		if common == "" {
			common = m.UnitCommon()
		} else {
			m.SetCommonUnit(common)
		}
		out = append(out, m)
	}
	return out
}

func (s *Settings) newInput(f Field) *measurement.Measurement {
	return measurement.NewNamed(f.Name, f.Label, f.Unit, 1).
		WithEditable(f.Editable).
		WithOptions(s.Options(f.Name))
}

// EnabledDimension returns the enabled field of a dimension calculator.
func (s *Settings) EnabledDimension() measurement.Name {
	if s.CalculatorType() != TypeDimension {
		return ""
	}
	for _, f := range s.active().Fields {
		if f.Enabled {
			return f.Name
		}
	}
	return ""
}

// ResultCommonUnit is the standard unit the combined total of the selected
// calculator is expressed in before conversion to the pricing unit.
func (s *Settings) ResultCommonUnit() string {
	inputs := s.CalculatorMeasurements()
	if len(inputs) == 0 {
		return ""
	}
	result := measurement.NewNamed(s.Type.ResultName(s.EnabledDimension()), "", "", 0)
	return result.SetCommonUnit(inputs[0].UnitCommon())
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := &Settings{Type: s.Type, Calculators: make(map[Type]Config, len(s.Calculators))}
	for t, cfg := range s.Calculators {
		fields := make([]Field, len(cfg.Fields))
		for i, f := range cfg.Fields {
			if f.Options != nil {
				f.Options = append([]string(nil), f.Options...)
			}
			if f.Attributes != nil {
				attrs := *f.Attributes
				f.Attributes = &attrs
			}
			fields[i] = f
		}
		out.Calculators[t] = Config{Pricing: cfg.Pricing, Fields: fields}
	}
	return out
}
