package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/measure-pricing-service/internal/domain/dto"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/service"
)

// QuotesHandler serves stored quotes.
type QuotesHandler struct {
	quotes service.QuotesService
}

// NewQuotesHandler creates a new QuotesHandler.
func NewQuotesHandler(quotes service.QuotesService) *QuotesHandler {
	return &QuotesHandler{quotes: quotes}
}

// GetQuote handles GET /api/quotes/{id} requests.
//
// @Summary      Get a quote
// @Tags         Quotes
// @Produce      json
// @Param        id path string true "Quote ID"
// @Success      200 {object} dto.SuccessResponse{data=model.Quote} "Quote"
// @Failure      404 {object} dto.ErrorResponse "Quote not found"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Router       /api/quotes/{id} [get]
func (h *QuotesHandler) GetQuote(c *gin.Context) {
	builder := NewResponseBuilder(c)

	quote, err := h.quotes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(quote)
}

// ListQuotes handles GET /api/quotes requests.
//
// @Summary      List quotes
// @Description  Lists stored quotes, newest first, filtered by product, request id and creation time.
// @Tags         Quotes
// @Produce      json
// @Param        product_id query string false "Product ID"
// @Param        request_id query string false "Request ID the quote was priced under"
// @Param        since query string false "Earliest creation time (RFC 3339)"
// @Param        until query string false "Latest creation time (RFC 3339)"
// @Param        limit query int false "Page size" minimum(1) maximum(100)
// @Param        skip query int false "Quotes to skip" minimum(0)
// @Success      200 {object} dto.SuccessResponse{data=dto.QuoteListResponse} "Quotes"
// @Failure      400 {object} dto.ErrorResponse "Invalid query"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Router       /api/quotes [get]
func (h *QuotesHandler) ListQuotes(c *gin.Context) {
	builder := NewResponseBuilder(c)

	q, err := BuildQuery[dto.QuoteListQuery](c)
	if err != nil {
		builder.BindError(err)
		return
	}
	opts := q.Options()

	quotes, err := h.quotes.Query(c.Request.Context(), opts)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	total, err := h.quotes.Count(c.Request.Context(), opts)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	if quotes == nil {
		quotes = []*model.Quote{}
	}

	builder.SuccessOK(dto.QuoteListResponse{
		Quotes: quotes,
		Total:  total,
		Limit:  opts.Limit,
		Skip:   opts.Skip,
	})
}
