package measurement

import "sync"

// Standard units. Every known unit normalizes to exactly one of these.
const (
	Foot        = "ft"
	Meter       = "m"
	SquareFoot  = "sq. ft."
	SquareMeter = "sq m"
	FluidOunce  = "fl. oz."
	CubicFoot   = "cu. ft."
	CubicMeter  = "cu m"
	Pound       = "lbs"
	Kilogram    = "kg"
)

// Family groups the units that share one standard unit.
type Family string

const (
	FamilyUnknown        Family = ""
	FamilyEnglishLength  Family = "english-length"
	FamilySILength       Family = "si-length"
	FamilyEnglishArea    Family = "english-area"
	FamilySIArea         Family = "si-area"
	FamilyEnglishLiquid  Family = "english-liquid-volume"
	FamilyEnglishVolume  Family = "english-volume"
	FamilySIVolume       Family = "si-volume"
	FamilyEnglishWeight  Family = "english-weight"
	FamilySIWeight       Family = "si-weight"
)

// normalizeEntry converts a unit to its standard unit.
type normalizeEntry struct {
	factor  float64
	unit    string
	inverse bool
	family  Family
}

// conversionEntry converts a standard unit to another unit.
type conversionEntry struct {
	factor  float64
	inverse bool
}

type unitTables struct {
	normalize  map[string]normalizeEntry
	conversion map[string]map[string]conversionEntry
}

var (
	tablesOnce sync.Once
	tables     *unitTables
)

// getTables returns the process-wide conversion tables, building them on
// first use. The returned maps are never written after construction.
func getTables() *unitTables {
	tablesOnce.Do(func() {
		tables = &unitTables{
			normalize:  buildNormalizeTable(),
			conversion: buildConversionTable(),
		}
	})
	return tables
}

func buildNormalizeTable() map[string]normalizeEntry {
	n := func(factor float64, unit string, family Family) normalizeEntry {
		return normalizeEntry{factor: factor, unit: unit, family: family}
	}
	inv := func(factor float64, unit string, family Family) normalizeEntry {
		return normalizeEntry{factor: factor, unit: unit, inverse: true, family: family}
	}

	return map[string]normalizeEntry{
		// English length
		"in": inv(12, Foot, FamilyEnglishLength),
		"ft": n(1, Foot, FamilyEnglishLength),
		"yd": n(3, Foot, FamilyEnglishLength),
		"mi": n(5280, Foot, FamilyEnglishLength),

		// SI length
		"mm": n(0.001, Meter, FamilySILength),
		"cm": n(0.01, Meter, FamilySILength),
		"m":  n(1, Meter, FamilySILength),
		"km": n(1000, Meter, FamilySILength),

		// English area
		"sq. in.": inv(144, SquareFoot, FamilyEnglishArea),
		"sq. ft.": n(1, SquareFoot, FamilyEnglishArea),
		"sq. yd.": n(9, SquareFoot, FamilyEnglishArea),
		"acs":     n(43560, SquareFoot, FamilyEnglishArea),
		"sq. mi.": n(27878400, SquareFoot, FamilyEnglishArea),

		// SI area
		"sq mm": n(0.000001, SquareMeter, FamilySIArea),
		"sq cm": n(0.0001, SquareMeter, FamilySIArea),
		"sq m":  n(1, SquareMeter, FamilySIArea),
		"ha":    n(10000, SquareMeter, FamilySIArea),
		"sq km": n(1000000, SquareMeter, FamilySIArea),

		// English liquid volume
		"fl. oz.": n(1, FluidOunce, FamilyEnglishLiquid),
		"cup":     n(8, FluidOunce, FamilyEnglishLiquid),
		"pt":      n(16, FluidOunce, FamilyEnglishLiquid),
		"qt":      n(32, FluidOunce, FamilyEnglishLiquid),
		"gal":     n(128, FluidOunce, FamilyEnglishLiquid),

		// English cubic volume
		"cu. in.": inv(1728, CubicFoot, FamilyEnglishVolume),
		"cu. ft.": n(1, CubicFoot, FamilyEnglishVolume),
		"cu. yd.": n(27, CubicFoot, FamilyEnglishVolume),

		// SI volume
		"ml":    n(0.000001, CubicMeter, FamilySIVolume),
		"cu cm": n(0.000001, CubicMeter, FamilySIVolume),
		"l":     n(0.001, CubicMeter, FamilySIVolume),
		"cu m":  n(1, CubicMeter, FamilySIVolume),

		// English weight
		"oz":  inv(16, Pound, FamilyEnglishWeight),
		"lbs": n(1, Pound, FamilyEnglishWeight),
		"tn":  n(2000, Pound, FamilyEnglishWeight),

		// SI weight
		"g":  n(0.001, Kilogram, FamilySIWeight),
		"kg": n(1, Kilogram, FamilySIWeight),
		"t":  n(1000, Kilogram, FamilySIWeight),
	}
}

func buildConversionTable() map[string]map[string]conversionEntry {
	c := func(factor float64) conversionEntry { return conversionEntry{factor: factor} }
	inv := func(factor float64) conversionEntry { return conversionEntry{factor: factor, inverse: true} }

	return map[string]map[string]conversionEntry{
		Foot: {
			"in": c(12),
			"ft": c(1),
			"yd": inv(3),
			"mi": inv(5280),
			"mm": c(304.8),
			"cm": c(30.48),
			"m":  c(0.3048),
			"km": c(0.0003048),
		},
		Meter: {
			"mm": c(1000),
			"cm": c(100),
			"m":  c(1),
			"km": c(0.001),
			"in": c(39.3701),
			"ft": c(3.28084),
			"yd": c(1.09361),
			"mi": c(0.000621371),
		},
		SquareFoot: {
			"sq. in.": c(144),
			"sq. ft.": c(1),
			"sq. yd.": inv(9),
			"acs":     inv(43560),
			"sq. mi.": inv(27878400),
			"sq mm":   c(92903.04),
			"sq cm":   c(929.0304),
			"sq m":    c(0.092903),
			"sq km":   c(9.2903e-8),
		},
		SquareMeter: {
			"sq mm":   c(1000000),
			"sq cm":   c(10000),
			"sq m":    c(1),
			"ha":      c(0.0001),
			"sq km":   c(0.000001),
			"sq. in.": c(1550),
			"sq. ft.": c(10.7639),
			"sq. yd.": c(1.19599),
			"acs":     c(0.000247105),
			"sq. mi.": c(3.86102e-7),
		},
		FluidOunce: {
			"fl. oz.": c(1),
			"cup":     inv(8),
			"pt":      inv(16),
			"qt":      inv(32),
			"gal":     inv(128),
			"cu. in.": c(231.0 / 128.0),
			"cu. ft.": c(0.00104438),
			"cu. yd.": c(3.86807163e-5),
			"ml":      c(29.5735),
			"cu cm":   c(29.5735),
			"l":       c(0.0295735),
			"cu m":    c(2.95735e-5),
		},
		CubicFoot: {
			"fl. oz.": c(957.506),
			"cup":     c(119.688),
			"pt":      c(59.8442),
			"qt":      c(29.9221),
			"gal":     c(7.48052),
			"cu. in.": c(1728),
			"cu. ft.": c(1),
			"cu. yd.": inv(27),
			"ml":      c(28316.8466),
			"cu cm":   c(28316.8466),
			"l":       c(28.3168466),
			"cu m":    c(0.0283168466),
		},
		CubicMeter: {
			"ml":      c(1000000),
			"cu cm":   c(1000000),
			"l":       c(1000),
			"cu m":    c(1),
			"fl. oz.": c(33814),
			"cup":     c(4226.75),
			"pt":      c(2113.38),
			"qt":      c(1056.69),
			"gal":     c(264.172),
			"cu. in.": c(61023.7),
			"cu. ft.": c(35.3147),
			"cu. yd.": c(1.30795062),
		},
		Pound: {
			"oz":  c(16),
			"lbs": c(1),
			"tn":  inv(2000),
			"g":   c(453.592),
			"kg":  c(0.453592),
			"t":   c(0.000453592),
		},
		Kilogram: {
			"g":   c(1000),
			"kg":  c(1),
			"t":   c(0.001),
			"oz":  c(35.274),
			"lbs": c(2.20462),
			"tn":  c(0.00110231),
		},
	}
}

// Units returns every unit code known to the normalize table.
func Units() []string {
	t := getTables()
	units := make([]string, 0, len(t.normalize))
	for u := range t.normalize {
		units = append(units, u)
	}
	return units
}

// IsKnownUnit reports whether unit appears in the normalize table.
func IsKnownUnit(unit string) bool {
	_, ok := getTables().normalize[unit]
	return ok
}

// FamilyOf returns the family of unit, or FamilyUnknown.
func FamilyOf(unit string) Family {
	return getTables().normalize[unit].family
}

// StandardUnit returns the standard unit for unit, or "" when unit is unknown.
// For 'sq. in.', 'sq. ft.' or 'acs' this is 'sq. ft.', for 'sq mm' it is 'sq m'.
func StandardUnit(unit string) string {
	return getTables().normalize[unit].unit
}

// ToDimensionUnit projects unit onto the length unit of the same system,
// so 'sq. ft.' and 'cu. ft.' both become 'ft'. Unmapped units are returned as is.
func ToDimensionUnit(unit string) string {
	switch unit {
	case "mm", "sq mm":
		return "mm"
	case "cm", "sq cm", "ml", "cu cm":
		return "cm"
	case "m", "sq m", "cu m", "ha":
		return "m"
	case "km", "sq km":
		return "km"
	case "in", "sq. in.", "cu. in.":
		return "in"
	case "ft", "sq. ft.", "cu. ft.", "acs":
		return "ft"
	case "yd", "sq. yd.", "cu. yd.":
		return "yd"
	case "mi", "sq. mi.":
		return "mi"
	}
	return unit
}

// ToAreaUnit projects unit onto the matching area unit, or "" when there is none.
func ToAreaUnit(unit string) string {
	switch unit {
	case "mm", "sq mm":
		return "sq mm"
	case "cm", "sq cm", "ml", "cu cm":
		return "sq cm"
	case "m", "sq m", "cu m":
		return "sq m"
	case "km", "sq km":
		return "sq km"
	case "in", "sq. in.", "cu. in.":
		return "sq. in."
	case "ft", "sq. ft.", "cu. ft.":
		return "sq. ft."
	case "yd", "sq. yd.", "cu. yd.":
		return "sq. yd."
	case "mi", "sq. mi.":
		return "sq. mi."
	case "ha":
		return "ha"
	case "acs":
		return "acs"
	}
	return ""
}

// ToVolumeUnit projects unit onto the matching volume unit, or "" when there is none.
func ToVolumeUnit(unit string) string {
	switch unit {
	case "cm", "sq cm", "ml", "cu cm":
		return "ml"
	case "m", "sq m", "cu m":
		return "cu m"
	case "in", "sq. in.", "cu. in.":
		return "cu. in."
	case "ft", "sq. ft.", "cu. ft.":
		return "cu. ft."
	case "yd", "sq. yd.", "cu. yd.":
		return "cu. yd."
	case "l", "gal", "qt", "pt", "cup", "fl. oz.":
		return unit
	}
	return ""
}

// CompareUnits reports whether two units can share one working unit: they are
// equal, or both project onto the same area unit (which also covers volumes).
func CompareUnits(a, b string) bool {
	if a == b {
		return true
	}
	areaA, areaB := ToAreaUnit(a), ToAreaUnit(b)
	return areaA != "" && areaA == areaB
}
