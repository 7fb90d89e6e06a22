// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the domain model,
// providing validation and serialization for API communication.
package dto

import (
	"strings"
	"time"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	// ErrMissingInputs is returned when a measurement request carries no inputs.
	ErrMissingInputs = &ValidationError{
		Field:   "inputs",
		Message: "at least one measurement is required",
	}
	// ErrMissingUnit is returned when a conversion names no source or target unit.
	ErrMissingUnit = &ValidationError{
		Field:   "unit",
		Message: "from and to are required",
	}
)

// ConvertRequest represents the JSON request body for the unit conversion endpoint.
//
// @Description Request to convert a value between two units
// @Example {"value": 12, "from": "in", "to": "ft"}
type ConvertRequest struct {
	Value *float64 `json:"value" binding:"required" example:"12"`
	From  string   `json:"from" binding:"required" example:"in"`
	To    string   `json:"to" binding:"required" example:"ft"`
} // @name ConvertRequest

// Validate performs custom validation on the request.
func (r *ConvertRequest) Validate() error {
	if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
		return ErrMissingUnit
	}
	return nil
}

// MeasurementRequest carries the customer's raw measurement inputs, keyed by
// field name (length, width, height, area, volume, weight). Values may be
// numbers or strings such as "1 1/2".
//
// @Description Customer measurement inputs
// @Example {"inputs": {"length": "4", "width": "5"}}
type MeasurementRequest struct {
	VariationID string                  `json:"variation_id,omitempty" example:"v-1"`
	Inputs      map[string]pricing.Text `json:"inputs" binding:"required" swaggertype:"object,string"`
} // @name MeasurementRequest

// Validate performs custom validation on the request.
func (r *MeasurementRequest) Validate() error {
	if len(r.Inputs) == 0 {
		return ErrMissingInputs
	}
	return nil
}

// Values returns the inputs as plain strings.
func (r *MeasurementRequest) Values() map[string]string {
	out := make(map[string]string, len(r.Inputs))
	for k, v := range r.Inputs {
		out[strings.ToLower(strings.TrimSpace(k))] = string(v)
	}
	return out
}

// PriceRequest represents the JSON request body for the line price endpoint.
//
// @Description Request to price one line
// @Example {"inputs": {"length": "4", "width": "5"}, "quantity": 2}
type PriceRequest struct {
	MeasurementRequest
	// Quantity is the number of items. Zero counts as one.
	Quantity int `json:"quantity,omitempty" binding:"omitempty,gte=0" example:"1"`
} // @name PriceRequest

// UnitDefaultsRequest represents the JSON request body for replacing the
// store unit defaults.
type UnitDefaultsRequest struct {
	DimensionUnit string `json:"dimension_unit" binding:"required" example:"in"`
	AreaUnit      string `json:"area_unit" binding:"required" example:"sq. ft."`
	VolumeUnit    string `json:"volume_unit" binding:"required" example:"cu. ft."`
	WeightUnit    string `json:"weight_unit" binding:"required" example:"lbs"`
	// CreatedBy is the identifier of who created this configuration.
	CreatedBy string `json:"created_by,omitempty"`
} // @name UnitDefaultsRequest

// Units returns the requested unit defaults.
func (r *UnitDefaultsRequest) Units() calculator.UnitDefaults {
	return calculator.UnitDefaults{
		Dimension: strings.TrimSpace(r.DimensionUnit),
		Area:      strings.TrimSpace(r.AreaUnit),
		Volume:    strings.TrimSpace(r.VolumeUnit),
		Weight:    strings.TrimSpace(r.WeightUnit),
	}
}

// PricingRulesRequest replaces a product's pricing rules. Rows with an
// unparsable range start or no regular price are dropped on save.
type PricingRulesRequest struct {
	Rules []pricing.RawRule `json:"rules" binding:"required"`
} // @name PricingRulesRequest

// QuoteListQuery holds the query parameters of the quote listing endpoint.
type QuoteListQuery struct {
	ProductID string    `form:"product_id"`
	RequestID string    `form:"request_id"`
	Since     time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until     time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int       `form:"limit" binding:"omitempty,min=1,max=100"`
	Skip      int       `form:"skip" binding:"omitempty,min=0"`
}

// LimitQuery holds the page size of simple listings.
type LimitQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Or returns the requested limit, or def when none was given.
func (q *LimitQuery) Or(def int) int {
	if q.Limit == 0 {
		return def
	}
	return q.Limit
}

// DefaultQuoteLimit is the page size when none is requested.
const DefaultQuoteLimit = 20

// Options converts the query into repository options.
func (q *QuoteListQuery) Options() model.QuoteQueryOptions {
	opts := model.QuoteQueryOptions{
		ProductID: q.ProductID,
		RequestID: q.RequestID,
		Limit:     q.Limit,
		Skip:      q.Skip,
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultQuoteLimit
	}
	if !q.Since.IsZero() {
		since := q.Since
		opts.StartTime = &since
	}
	if !q.Until.IsZero() {
		until := q.Until
		opts.EndTime = &until
	}
	return opts
}
