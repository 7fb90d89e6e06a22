package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/measure-pricing-service/internal/domain/dto"
	"github.com/guttosm/measure-pricing-service/internal/middleware"
	"github.com/guttosm/measure-pricing-service/internal/service"
)

// Handler provides HTTP handlers for measurement and price calculation routes.
type Handler struct {
	pricing service.PricingService
}

// NewHandler creates a new Handler instance.
func NewHandler(pricing service.PricingService) *Handler {
	return &Handler{pricing: pricing}
}

// Convert handles POST /api/measurements/convert requests.
//
// @Summary      Convert a measurement
// @Description  Converts a value between two units of the same kind. In strict mode a conversion between unrelated units is rejected; otherwise the value passes through unchanged.
// @Tags         Measurements
// @Accept       json
// @Produce      json
// @Param        request body dto.ConvertRequest true "Value and units"
// @Success      200 {object} dto.SuccessResponse{data=service.Conversion} "Converted value"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      422 {object} dto.ErrorResponse "Unsupported conversion (strict mode)"
// @Failure      429 {object} dto.ErrorResponse "Too many requests - rate limit exceeded"
// @Router       /api/measurements/convert [post]
func (h *Handler) Convert(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.ConvertRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	result, err := h.pricing.Convert(*req.Value, req.From, req.To)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(result)
}

// Total handles POST /api/products/{id}/total requests.
//
// @Summary      Compute the total measurement
// @Description  Validates the customer's inputs against the product's calculator settings, combines them into the total measurement in the pricing unit and applies the configured overage.
// @Tags         Pricing
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body dto.MeasurementRequest true "Customer inputs"
// @Success      200 {object} dto.SuccessResponse{data=service.TotalResult} "Total measurement"
// @Failure      400 {object} dto.ErrorResponse "Invalid inputs, with per-field details"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Failure      422 {object} dto.ErrorResponse "Calculator disabled"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Router       /api/products/{id}/total [post]
func (h *Handler) Total(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.MeasurementRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	result, err := h.pricing.Total(c.Request.Context(), c.Param("id"), req.Values())
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(result)
}

// Price handles POST /api/products/{id}/price requests.
//
// @Summary      Price a line
// @Description  Computes the total measurement, resolves the unit price from the product's pricing rules and stores the result as a quote. Supports idempotency via Idempotency-Key header.
// @Tags         Pricing
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        Idempotency-Key header string false "Idempotency key for request deduplication"
// @Param        request body dto.PriceRequest true "Customer inputs and quantity"
// @Success      200 {object} dto.SuccessResponse{data=service.PriceQuote} "Priced line"
// @Failure      400 {object} dto.ErrorResponse "Invalid inputs, with per-field details"
// @Failure      404 {object} dto.ErrorResponse "Product or variation not found"
// @Failure      409 {object} dto.ErrorResponse "Insufficient stock"
// @Failure      422 {object} dto.ErrorResponse "No matching price rule"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Router       /api/products/{id}/price [post]
func (h *Handler) Price(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.PriceRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	quote, err := h.pricing.Price(c.Request.Context(), service.PriceRequest{
		ProductID:   c.Param("id"),
		VariationID: req.VariationID,
		Inputs:      req.Values(),
		Quantity:    req.Quantity,
		RequestID:   middleware.GetRequestID(c),
	})
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(quote)
}

// Quantity handles POST /api/products/{id}/quantity requests.
//
// @Summary      Items needed for a measurement
// @Description  In quantity-calculator mode, returns how many catalog items cover the customer's total measurement.
// @Tags         Pricing
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body dto.MeasurementRequest true "Customer inputs"
// @Success      200 {object} dto.SuccessResponse{data=service.QuantityResult} "Quantity"
// @Failure      400 {object} dto.ErrorResponse "Invalid inputs, with per-field details"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Failure      422 {object} dto.ErrorResponse "Product is not in quantity-calculator mode"
// @Router       /api/products/{id}/quantity [post]
func (h *Handler) Quantity(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.MeasurementRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	result, err := h.pricing.Quantity(c.Request.Context(), c.Param("id"), req.VariationID, req.Values())
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(result)
}

// Measurement handles GET /api/products/{id}/measurement requests.
//
// @Summary      Product measurement
// @Description  Derives the measurement one item of the product (or variation) represents, for the product's calculator type or the one requested.
// @Tags         Pricing
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        variation_id query string false "Variation ID"
// @Param        calculator_type query string false "Calculator type override"
// @Success      200 {object} dto.SuccessResponse{data=service.ProductMeasurement} "Product measurement"
// @Failure      400 {object} dto.ErrorResponse "Unknown calculator type"
// @Failure      404 {object} dto.ErrorResponse "Product or variation not found"
// @Router       /api/products/{id}/measurement [get]
func (h *Handler) Measurement(c *gin.Context) {
	builder := NewResponseBuilder(c)

	result, err := h.pricing.Measurement(c.Request.Context(), c.Param("id"), c.Query("variation_id"), c.Query("calculator_type"))
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(result)
}

// PriceSummary handles GET /api/products/{id}/price-summary requests.
//
// @Summary      Catalog price summary
// @Description  Returns the price range of the product's pricing rules and, for variable products, the per-unit price range of its variations.
// @Tags         Pricing
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.SuccessResponse{data=service.PriceSummary} "Price summary"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Router       /api/products/{id}/price-summary [get]
func (h *Handler) PriceSummary(c *gin.Context) {
	builder := NewResponseBuilder(c)

	result, err := h.pricing.PriceSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(result)
}

// Reorder handles GET /api/quotes/{id}/reorder requests.
//
// @Summary      Re-price a stored quote
// @Description  Recovers the original measurement of a quote by removing its overage and prices it again against the product's current settings. The result is stored as a new quote.
// @Tags         Quotes
// @Produce      json
// @Param        id path string true "Quote ID"
// @Success      200 {object} dto.SuccessResponse{data=service.PriceQuote} "Re-priced line"
// @Failure      404 {object} dto.ErrorResponse "Quote or product not found"
// @Failure      422 {object} dto.ErrorResponse "No matching price rule"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Router       /api/quotes/{id}/reorder [get]
func (h *Handler) Reorder(c *gin.Context) {
	builder := NewResponseBuilder(c)

	quote, err := h.pricing.Reorder(c.Request.Context(), c.Param("id"), middleware.GetRequestID(c))
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(quote)
}
