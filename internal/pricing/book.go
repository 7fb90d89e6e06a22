package pricing

import (
	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/measurement"
	"github.com/shopspring/decimal"
)

// Rules is an ordered rule list. Ranges are expressed in the pricing unit.
type Rules []Rule

// Clone returns a deep copy.
func (rs Rules) Clone() Rules {
	if rs == nil {
		return nil
	}
	out := make(Rules, len(rs))
	for i, r := range rs {
		if r.RangeEnd != nil {
			end := *r.RangeEnd
			r.RangeEnd = &end
		}
		out[i] = r
	}
	return out
}

// Book resolves prices from a product's rules under its calculator settings.
// Rules only take part in pricing-calculator mode; in any other mode the
// book is empty.
type Book struct {
	unit  string
	label string
	rules Rules
}

// NewBook binds rules to the settings they were saved under.
func NewBook(settings *calculator.Settings, rules Rules) *Book {
	b := &Book{unit: settings.PricingUnit(), label: settings.PricingLabel()}
	if settings.IsPricingCalculatorEnabled() {
		b.rules = rules
	}
	return b
}

// Unit is the pricing unit the stored ranges are expressed in.
func (b *Book) Unit() string { return b.unit }

// Has reports whether any rule is active.
func (b *Book) Has() bool { return len(b.rules) > 0 }

// Rules returns the active rules, with range bounds converted to toUnit
// when it is set and differs from the pricing unit. Open ends stay open.
func (b *Book) Rules(toUnit string) Rules {
	out := b.rules.Clone()
	if len(out) == 0 || toUnit == "" || toUnit == b.unit {
		return out
	}
	for i := range out {
		out[i].RangeStart = measurement.Convert(out[i].RangeStart, b.unit, toUnit)
		if out[i].RangeEnd != nil {
			end := measurement.Convert(*out[i].RangeEnd, b.unit, toUnit)
			out[i].RangeEnd = &end
		}
	}
	return out
}

// Match returns the first rule, in stored order, whose range contains value.
// When adjacent ranges share a boundary the earlier rule wins.
func (b *Book) Match(value float64) (Rule, error) {
	for _, r := range b.rules {
		if r.Contains(value) {
			return r, nil
		}
	}
	return Rule{}, ErrNoMatchingPriceRule
}

// Price converts m to the pricing unit and returns the price of the first
// matching rule.
func (b *Book) Price(m *measurement.Measurement) (decimal.Decimal, error) {
	r, err := b.Match(m.ValueIn(b.unit))
	if err != nil {
		return decimal.Zero, err
	}
	return r.Price(), nil
}

// OnSale reports whether any active rule carries a sale price.
func (b *Book) OnSale() bool {
	for _, r := range b.rules {
		if r.OnSale() {
			return true
		}
	}
	return false
}

// MinPrice returns the lowest resolved price; false when there are no rules.
func (b *Book) MinPrice() (decimal.Decimal, bool) {
	return b.fold(Rule.Price, decimal.Min, false)
}

// MaxPrice returns the highest resolved price; false when there are no rules.
func (b *Book) MaxPrice() (decimal.Decimal, bool) {
	return b.fold(Rule.Price, decimal.Max, false)
}

func (b *Book) MinRegularPrice() (decimal.Decimal, bool) {
	return b.fold(regular, decimal.Min, false)
}

func (b *Book) MaxRegularPrice() (decimal.Decimal, bool) {
	return b.fold(regular, decimal.Max, false)
}

// MinSalePrice considers only rules with a sale price.
func (b *Book) MinSalePrice() (decimal.Decimal, bool) {
	return b.fold(sale, decimal.Min, true)
}

// MaxSalePrice considers only rules with a sale price.
func (b *Book) MaxSalePrice() (decimal.Decimal, bool) {
	return b.fold(sale, decimal.Max, true)
}

func regular(r Rule) decimal.Decimal { return r.RegularPrice }
func sale(r Rule) decimal.Decimal    { return r.SalePrice.Decimal }

func (b *Book) fold(
	price func(Rule) decimal.Decimal,
	pick func(decimal.Decimal, ...decimal.Decimal) decimal.Decimal,
	saleOnly bool,
) (decimal.Decimal, bool) {
	var (
		acc   decimal.Decimal
		found bool
	)
	for _, r := range b.rules {
		if saleOnly && !r.OnSale() {
			continue
		}
		if !found {
			acc, found = price(r), true
			continue
		}
		acc = pick(acc, price(r))
	}
	return acc, found
}

// Summary is the aggregate view of a rule book used for catalog display.
type Summary struct {
	HasRules        bool             `json:"has_rules"`
	Unit            string           `json:"unit"`
	Label           string           `json:"label"`
	OnSale          bool             `json:"on_sale"`
	MinPrice        *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice        *decimal.Decimal `json:"max_price,omitempty"`
	MinRegularPrice *decimal.Decimal `json:"min_regular_price,omitempty"`
	MaxRegularPrice *decimal.Decimal `json:"max_regular_price,omitempty"`
	MinSalePrice    *decimal.Decimal `json:"min_sale_price,omitempty"`
	MaxSalePrice    *decimal.Decimal `json:"max_sale_price,omitempty"`
	Rules           Rules            `json:"rules"`
}

// Summary collects every aggregate query of the book.
func (b *Book) Summary() Summary {
	s := Summary{
		HasRules: b.Has(),
		Unit:     b.unit,
		Label:    b.label,
		OnSale:   b.OnSale(),
		Rules:    b.Rules(""),
	}
	if s.Rules == nil {
		s.Rules = Rules{}
	}
	s.MinPrice = optional(b.MinPrice())
	s.MaxPrice = optional(b.MaxPrice())
	s.MinRegularPrice = optional(b.MinRegularPrice())
	s.MaxRegularPrice = optional(b.MaxRegularPrice())
	s.MinSalePrice = optional(b.MinSalePrice())
	s.MaxSalePrice = optional(b.MaxSalePrice())
	return s
}

func optional(d decimal.Decimal, ok bool) *decimal.Decimal {
	if !ok {
		return nil
	}
	return &d
}
