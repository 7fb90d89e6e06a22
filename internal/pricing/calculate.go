package pricing

import (
	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/measurement"
	"github.com/shopspring/decimal"
)

// PriceInput carries everything CalculatePrice needs for one line.
type PriceInput struct {
	Settings *calculator.Settings
	Rules    Rules
	// BasePrice is the product price: a price per pricing unit in
	// pricing-calculator mode, an item price otherwise.
	BasePrice decimal.Decimal
	// MinimumPrice, when set, is the floor for calculated prices.
	MinimumPrice decimal.NullDecimal
	// Total is the customer's total measurement.
	Total *measurement.Measurement
	// Round, when true, rounds the result to Decimals places.
	Round    bool
	Decimals int32
}

// PriceResult explains how a price was reached.
type PriceResult struct {
	Price     decimal.Decimal `json:"price"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  float64         `json:"quantity"`
	Unit      string          `json:"unit"`
	Rule      *Rule           `json:"rule,omitempty"`
	Clamped   bool            `json:"clamped_to_minimum"`
	Mode      string          `json:"mode"`
}

const (
	ModePricingCalculator = "pricing-calculator"
	ModeFixed             = "fixed"
)

// CalculatePrice prices a total measurement. In pricing-calculator mode the
// unit price is the first matching rule's price when rules are configured,
// else the base price, and the line price is the unit price times the total
// in the pricing unit, raised to the minimum price when one is set. In any
// other mode the base price is returned unchanged. Rounding applies to both.
func CalculatePrice(in PriceInput) (PriceResult, error) {
	res := PriceResult{Price: in.BasePrice, UnitPrice: in.BasePrice, Mode: ModeFixed}

	if in.Settings.IsPricingCalculatorEnabled() && in.Total != nil {
		book := NewBook(in.Settings, in.Rules)
		res.Mode = ModePricingCalculator
		res.Unit = book.Unit()
		res.Quantity = in.Total.ValueIn(book.Unit())

		if book.Has() {
			rule, err := book.Match(res.Quantity)
			if err != nil {
				return PriceResult{}, err
			}
			res.Rule = &rule
			res.UnitPrice = rule.Price()
		}

		res.Price = res.UnitPrice.Mul(decimal.NewFromFloat(res.Quantity))
		if in.MinimumPrice.Valid && in.MinimumPrice.Decimal.GreaterThan(res.Price) {
			res.Price = in.MinimumPrice.Decimal
			res.Clamped = true
		}
	}

	if in.Round {
		res.Price = res.Price.Round(in.Decimals)
	}
	return res, nil
}
