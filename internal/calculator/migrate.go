package calculator

// Record is the loosely-typed persisted form of calculator settings:
//
//	{
//	  "version": 2,
//	  "calculator_type": "area-dimension",
//	  "area-dimension": {
//	    "pricing": {"enabled": "yes", "unit": "sq. ft.", "calculator": {"enabled": "yes"}, ...},
//	    "length":  {"label": "Length", "unit": "ft", "editable": "yes", "options": [], ...},
//	    ...
//	  },
//	  ...
//	}
type Record map[string]any

const (
	versionKey = "version"
	typeKey    = "calculator_type"
	pricingKey = "pricing"
)

// CurrentVersion is the record schema version written by Settings.Record.
const CurrentVersion = 2

type migration struct {
	version int
	apply   func(Record)
}

// migrations run in order on every record whose version is below theirs.
// Records written before versioning was introduced are version 0.
var migrations = []migration{
	{version: 1, apply: addPricingSubFlags},
	{version: 2, apply: addFieldOptions},
}

// Migrate returns a copy of rec upgraded to CurrentVersion. The input is not
// modified. The second result is the version rec was read at.
func Migrate(rec Record) (Record, int) {
	out := Record(cloneMap(rec))
	from := intValue(out[versionKey])
	for _, m := range migrations {
		if from < m.version {
			m.apply(out)
		}
	}
	out[versionKey] = CurrentVersion
	return out, from
}

// addPricingSubFlags injects the inventory, weight and calculator flags
// under every pricing block that lacks them.
func addPricingSubFlags(rec Record) {
	forEachCalculator(rec, func(calc map[string]any) {
		pricing, ok := calc[pricingKey].(map[string]any)
		if !ok {
			return
		}
		for _, flag := range []string{"inventory", "weight", "calculator"} {
			if _, ok := pricing[flag]; !ok {
				pricing[flag] = map[string]any{"enabled": "no"}
			}
		}
	})
}

// addFieldOptions injects an empty options list on every field that lacks one.
func addFieldOptions(rec Record) {
	forEachCalculator(rec, func(calc map[string]any) {
		for name, v := range calc {
			if name == pricingKey {
				continue
			}
			field, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if _, ok := field["options"]; !ok {
				field["options"] = []any{}
			}
		}
	})
}

func forEachCalculator(rec Record, fn func(map[string]any)) {
	for key, v := range rec {
		if key == versionKey || key == typeKey {
			continue
		}
		if calc, ok := v.(map[string]any); ok {
			fn(calc)
		}
	}
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Record:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	}
	return v
}
