package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteMeasurement is a persisted {value, unit} pair.
type QuoteMeasurement struct {
	Value float64 `json:"value" example:"22"`
	Unit  string  `json:"unit" example:"sq. ft."`
} // @name QuoteMeasurement

// QuoteOverage records the overage applied to a quote's total.
type QuoteOverage struct {
	// Percent is the overage fraction, 0.1 for 10%.
	Percent  float64 `json:"percent" example:"0.1"`
	Original float64 `json:"original" example:"20"`
	Amount   float64 `json:"amount" example:"2"`
} // @name QuoteOverage

// Quote is a priced line as it was computed for a customer. The stored total
// includes the overage.
//
// @Description Persisted price resolution
type Quote struct {
	ID             string            `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProductID      string            `json:"product_id" example:"tile-42"`
	VariationID    string            `json:"variation_id,omitempty"`
	CalculatorType string            `json:"calculator_type" example:"area-dimension"`
	Inputs         map[string]string `json:"inputs"`
	Total          QuoteMeasurement  `json:"total"`
	Overage        QuoteOverage      `json:"overage"`
	Quantity       int               `json:"quantity" example:"1"`
	Price          decimal.Decimal   `json:"price" swaggertype:"string" example:"71.50"`
	RequestID      string            `json:"request_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
} // @name Quote

// QuoteQueryOptions filters quote listings.
type QuoteQueryOptions struct {
	ProductID string
	RequestID string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Skip      int
}

// Matches reports whether q passes the filter. Limit and Skip are ignored.
func (o QuoteQueryOptions) Matches(q *Quote) bool {
	if o.ProductID != "" && q.ProductID != o.ProductID {
		return false
	}
	if o.RequestID != "" && q.RequestID != o.RequestID {
		return false
	}
	if o.StartTime != nil && q.CreatedAt.Before(*o.StartTime) {
		return false
	}
	if o.EndTime != nil && q.CreatedAt.After(*o.EndTime) {
		return false
	}
	return true
}
