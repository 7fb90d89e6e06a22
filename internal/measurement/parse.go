package measurement

import (
	"regexp"
	"strconv"
)

var (
	mixedFractionPattern = regexp.MustCompile(`(\d+)\s+(\d+)/(\d+)`)
	fractionPattern      = regexp.MustCompile(`(\d+)/(\d+)`)
	numericPrefixPattern = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// ConvertToFloat parses customer input that may be a decimal, a fraction
// ("3/4") or a mixed fraction ("1 1/2"). Unparseable input yields 0.
func ConvertToFloat(s string) float64 {
	if m := mixedFractionPattern.FindStringSubmatch(s); m != nil {
		whole := atof(m[1])
		denominator := atof(m[3])
		if denominator == 0 {
			return whole
		}
		return whole + atof(m[2])/denominator
	}

	if m := fractionPattern.FindStringSubmatch(s); m != nil {
		denominator := atof(m[2])
		if denominator == 0 {
			return 0
		}
		return atof(m[1]) / denominator
	}

	// Leading numeric prefix only, so "12 ft" reads as 12.
	prefix := numericPrefixPattern.FindString(s)
	if prefix == "" {
		return 0
	}
	return atof(prefix)
}

// IsNumeric reports whether s is entirely a decimal number, ignoring surrounding spaces.
func IsNumeric(s string) bool {
	prefix := numericPrefixPattern.FindString(s)
	if prefix == "" {
		return false
	}
	rest := s[len(prefix):]
	for _, r := range rest {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func atof(s string) float64 {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r') {
		s = s[1:]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
