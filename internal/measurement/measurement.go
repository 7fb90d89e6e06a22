package measurement

// Name is the role a measurement plays in a calculation.
type Name string

const (
	NameLength Name = "length"
	NameWidth  Name = "width"
	NameHeight Name = "height"
	NameArea   Name = "area"
	NameVolume Name = "volume"
	NameWeight Name = "weight"
)

// Kind collapses length, width and height into "dimension".
func (n Name) Kind() string {
	switch n {
	case NameLength, NameWidth, NameHeight:
		return "dimension"
	default:
		return string(n)
	}
}

// Option is one pre-defined choice offered for a limited input field.
type Option struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Measurement is a value with a unit and an optional role. The zero value is
// not useful; use New or NewNamed.
//
// A Measurement is not safe for concurrent mutation. Build one per calculation.
type Measurement struct {
	value      float64
	unit       string
	name       Name
	label      string
	editable   bool
	options    []Option
	commonUnit string
}

// New returns an anonymous measurement.
func New(unit string, value float64) *Measurement {
	return &Measurement{unit: unit, value: value}
}

// NewNamed returns a measurement with a role and display label.
func NewNamed(name Name, label, unit string, value float64) *Measurement {
	return &Measurement{unit: unit, value: value, name: name, label: label}
}

// WithEditable marks the measurement as customer-editable.
func (m *Measurement) WithEditable(editable bool) *Measurement {
	m.editable = editable
	return m
}

// WithOptions attaches the choices offered for the measurement.
func (m *Measurement) WithOptions(options []Option) *Measurement {
	m.options = options
	return m
}

func (m *Measurement) Name() Name        { return m.name }
func (m *Measurement) Label() string     { return m.label }
func (m *Measurement) Unit() string      { return m.unit }
func (m *Measurement) Editable() bool    { return m.editable }
func (m *Measurement) Options() []Option { return m.options }

// Value returns the stored value in the measurement's own unit.
func (m *Measurement) Value() float64 {
	return m.value
}

// SetValue replaces the value, keeping the unit.
func (m *Measurement) SetValue(value float64) {
	m.value = value
}

// ValueIn returns the value converted to unit without changing the measurement.
// Missing conversion paths pass the value through.
func (m *Measurement) ValueIn(unit string) float64 {
	if unit == "" || unit == m.unit {
		return m.value
	}
	return Convert(m.value, m.unit, unit)
}

// SetUnit converts the stored value to unit in place and returns the new value.
// When no conversion path exists the measurement is left untouched and
// ErrUnsupportedConversion is returned.
func (m *Measurement) SetUnit(unit string) (float64, error) {
	converted, err := TryConvert(m.value, m.unit, unit)
	if err != nil {
		return m.value, err
	}
	m.value = converted
	m.unit = unit
	return m.value, nil
}

// UnitCommon returns the working unit used when combining this measurement
// with its siblings. It defaults to the standard unit of the measurement's unit.
func (m *Measurement) UnitCommon() string {
	if m.commonUnit == "" {
		return StandardUnit(m.unit)
	}
	return m.commonUnit
}

// SetCommonUnit projects unit onto this measurement's dimensionality (so a
// length unit handed to an area becomes the matching area unit) and stores
// the standard form of the result as the common unit.
func (m *Measurement) SetCommonUnit(unit string) string {
	switch m.name {
	case NameLength, NameWidth, NameHeight:
		unit = ToDimensionUnit(unit)
	case NameArea:
		unit = ToAreaUnit(unit)
	case NameVolume:
		unit = ToVolumeUnit(unit)
	}
	m.commonUnit = StandardUnit(unit)
	return m.commonUnit
}

// ValueCommon returns the value expressed in the common unit.
func (m *Measurement) ValueCommon() float64 {
	return Convert(m.value, m.unit, m.UnitCommon())
}
