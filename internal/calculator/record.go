package calculator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/guttosm/measure-pricing-service/internal/measurement"
)

// Decode migrates rec to the current schema and builds typed Settings from it.
// Keys outside the known schema are ignored. A nil or empty record decodes
// to disabled settings.
func Decode(rec Record) (*Settings, error) {
	migrated, _ := Migrate(rec)

	calcType, err := ParseType(stringValue(migrated[typeKey]))
	if err != nil {
		return nil, err
	}

	s := &Settings{Type: calcType, Calculators: make(map[Type]Config)}
	for _, t := range allTypes {
		raw, ok := migrated[string(t)].(map[string]any)
		if !ok {
			continue
		}
		s.Calculators[t] = decodeConfig(t, raw)
	}
	return s, nil
}

func decodeConfig(t Type, raw map[string]any) Config {
	var cfg Config
	if p, ok := raw[pricingKey].(map[string]any); ok {
		cfg.Pricing = Pricing{
			Enabled:           yes(p["enabled"]),
			Label:             stringValue(p["label"]),
			Unit:              stringValue(p["unit"]),
			CalculatorEnabled: subFlag(p, "calculator"),
			InventoryEnabled:  subFlag(p, "inventory"),
			WeightEnabled:     subFlag(p, "weight"),
			OveragePercent:    floatValue(p["overage"]),
		}
	}

	for _, name := range t.Fields() {
		f, ok := raw[string(name)].(map[string]any)
		if !ok {
			continue
		}
		field := Field{
			Name:     name,
			Label:    stringValue(f["label"]),
			Unit:     stringValue(f["unit"]),
			Editable: yes(f["editable"]),
			Enabled:  yes(f["enabled"]),
			Accepted: AcceptedInput(stringValue(f["accepted_input"])),
			Options:  stringSlice(f["options"]),
		}
		if attrs, ok := f["input_attributes"].(map[string]any); ok {
			field.Attributes = &InputAttributes{
				Min:  floatValue(attrs["min"]),
				Max:  floatValue(attrs["max"]),
				Step: floatValue(attrs["step"]),
			}
		}
		cfg.Fields = append(cfg.Fields, field)
	}
	return cfg
}

func subFlag(pricing map[string]any, key string) bool {
	sub, ok := pricing[key].(map[string]any)
	return ok && yes(sub["enabled"])
}

// Record encodes the settings at CurrentVersion.
func (s *Settings) Record() Record {
	rec := Record{
		versionKey: CurrentVersion,
		typeKey:    string(s.CalculatorType()),
	}
	if s == nil {
		return rec
	}
	for _, t := range allTypes {
		cfg, ok := s.Calculators[t]
		if !ok {
			continue
		}
		calc := map[string]any{
			pricingKey: map[string]any{
				"enabled":    yesNo(cfg.Pricing.Enabled),
				"label":      cfg.Pricing.Label,
				"unit":       cfg.Pricing.Unit,
				"calculator": map[string]any{"enabled": yesNo(cfg.Pricing.CalculatorEnabled)},
				"inventory":  map[string]any{"enabled": yesNo(cfg.Pricing.InventoryEnabled)},
				"weight":     map[string]any{"enabled": yesNo(cfg.Pricing.WeightEnabled)},
				"overage":    cfg.Pricing.OveragePercent,
			},
		}
		for _, f := range cfg.Fields {
			options := make([]any, len(f.Options))
			for i, o := range f.Options {
				options[i] = o
			}
			field := map[string]any{
				"label":    f.Label,
				"unit":     f.Unit,
				"editable": yesNo(f.Editable),
				"options":  options,
			}
			if t == TypeDimension {
				field["enabled"] = yesNo(f.Enabled)
			}
			if f.Accepted != AcceptedInputUnset {
				field["accepted_input"] = string(f.Accepted)
			}
			if f.Attributes != nil {
				field["input_attributes"] = map[string]any{
					"min":  f.Attributes.Min,
					"max":  f.Attributes.Max,
					"step": f.Attributes.Step,
				}
			}
			calc[string(f.Name)] = field
		}
		rec[string(t)] = calc
	}
	return rec
}

func yes(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "yes")
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return fmt.Sprint(v)
}

func floatValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		if !measurement.IsNumeric(t) {
			return 0
		}
		return measurement.ConvertToFloat(t)
	}
	return 0
}

func intValue(v any) int {
	f := floatValue(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, stringValue(item))
		}
		return out
	case map[string]any:
		// Sparse arrays can arrive as {"0": "1/2", "1": "3/4"}.
		out := make([]string, 0, len(t))
		for i := 0; i < len(t); i++ {
			item, ok := t[strconv.Itoa(i)]
			if !ok {
				break
			}
			out = append(out, stringValue(item))
		}
		return out
	}
	return []string{}
}
