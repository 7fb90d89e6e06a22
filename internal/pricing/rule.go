package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/guttosm/measure-pricing-service/internal/measurement"
	"github.com/shopspring/decimal"
)

// ErrNoMatchingPriceRule is returned when a measurement falls outside every rule range.
var ErrNoMatchingPriceRule = errors.New("no price available for a product with this measurement, please contact the store for assistance")

// Rule prices measurements within [RangeStart, RangeEnd]. A nil RangeEnd is open.
type Rule struct {
	RangeStart   float64             `json:"range_start"`
	RangeEnd     *float64            `json:"range_end"`
	RegularPrice decimal.Decimal     `json:"regular_price"`
	SalePrice    decimal.NullDecimal `json:"sale_price"`
}

// Price is the sale price when one is set, otherwise the regular price.
func (r Rule) Price() decimal.Decimal {
	if r.SalePrice.Valid {
		return r.SalePrice.Decimal
	}
	return r.RegularPrice
}

// OnSale reports whether the rule carries a sale price.
func (r Rule) OnSale() bool {
	return r.SalePrice.Valid
}

// Contains reports whether value falls within the rule's inclusive range.
func (r Rule) Contains(value float64) bool {
	return value >= r.RangeStart && (r.RangeEnd == nil || value <= *r.RangeEnd)
}

// Text is a lenient scalar: admin forms send numbers as strings, JSON
// clients send them as numbers, and both may leave a value blank.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}

func (t Text) trimmed() string {
	return strings.TrimSpace(string(t))
}

// RawRule is a rule as submitted by an administrator, before validation.
type RawRule struct {
	RangeStart   Text `json:"range_start" msgpack:"range_start"`
	RangeEnd     Text `json:"range_end" msgpack:"range_end"`
	RegularPrice Text `json:"regular_price" msgpack:"regular_price"`
	SalePrice    Text `json:"sale_price" msgpack:"sale_price"`
}

// FilterValid converts submitted rules, silently dropping any whose range
// start or regular price is not a non-negative number. Order is preserved.
func FilterValid(raw []RawRule) Rules {
	rules := make(Rules, 0, len(raw))
	for _, r := range raw {
		start, ok := nonNegative(r.RangeStart)
		if !ok {
			continue
		}
		regularFloat, ok := nonNegative(r.RegularPrice)
		if !ok {
			continue
		}
		regular, err := decimal.NewFromString(r.RegularPrice.trimmed())
		if err != nil {
			regular = decimal.NewFromFloat(regularFloat)
		}

		rule := Rule{RangeStart: start, RegularPrice: regular}
		if end := r.RangeEnd.trimmed(); end != "" && measurement.IsNumeric(end) {
			v, _ := strconv.ParseFloat(end, 64)
			rule.RangeEnd = &v
		}
		if sale := r.SalePrice.trimmed(); sale != "" {
			if d, err := decimal.NewFromString(sale); err == nil {
				rule.SalePrice = decimal.NewNullDecimal(d)
			}
		}
		rules = append(rules, rule)
	}
	return rules
}

// Raw renders the rule back into its submitted form.
func (r Rule) Raw() RawRule {
	raw := RawRule{
		RangeStart:   Text(strconv.FormatFloat(r.RangeStart, 'f', -1, 64)),
		RegularPrice: Text(r.RegularPrice.String()),
	}
	if r.RangeEnd != nil {
		raw.RangeEnd = Text(strconv.FormatFloat(*r.RangeEnd, 'f', -1, 64))
	}
	if r.SalePrice.Valid {
		raw.SalePrice = Text(r.SalePrice.Decimal.String())
	}
	return raw
}

func nonNegative(t Text) (float64, bool) {
	s := t.trimmed()
	if !measurement.IsNumeric(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
