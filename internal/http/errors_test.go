package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/circuitbreaker"
	"github.com/guttosm/measure-pricing-service/internal/domain/dto"
	"github.com/guttosm/measure-pricing-service/internal/measurement"
	"github.com/guttosm/measure-pricing-service/internal/mocks"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
	"github.com/guttosm/measure-pricing-service/internal/repository"
	"github.com/guttosm/measure-pricing-service/internal/service"
)

func setupRouterWithMock(t *testing.T) (*testServer, *mocks.MockPricingService) {
	mockPricing := mocks.NewMockPricingService(t)
	cfg := DefaultRouterConfig()
	cfg.RateLimit = 0
	cfg.EnableIdempotency = false
	return &testServer{router: NewRouter(NewHandler(mockPricing), NewHealthHandler(), cfg)}, mockPricing
}

func TestServiceError_Mapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		hasDetails     bool
	}{
		{"product not found", service.ErrProductNotFound, http.StatusNotFound, dto.ErrCodeNotFound, false},
		{"wrapped product not found", fmt.Errorf("load product: %w", service.ErrProductNotFound), http.StatusNotFound, dto.ErrCodeNotFound, false},
		{"variation not found", service.ErrVariationNotFound, http.StatusNotFound, dto.ErrCodeNotFound, false},
		{"repository not found", repository.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound, false},
		{"no matching rule", pricing.ErrNoMatchingPriceRule, http.StatusUnprocessableEntity, dto.ErrCodeUnprocessable, false},
		{"strict conversion", measurement.ErrUnsupportedConversion, http.StatusUnprocessableEntity, dto.ErrCodeUnprocessable, false},
		{"calculator disabled", calculator.ErrCalculatorDisabled, http.StatusUnprocessableEntity, dto.ErrCodeUnprocessable, false},
		{"calculator without fields", fmt.Errorf("area calculator: %w", service.ErrNoCalculatorInputs), http.StatusUnprocessableEntity, dto.ErrCodeUnprocessable, false},
		{"insufficient stock", service.ErrInsufficientStock, http.StatusConflict, dto.ErrCodeConflict, false},
		{"circuit open", circuitbreaker.ErrCircuitOpen, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, false},
		{"storage disabled", service.ErrRepositoryNotConfigured, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, false},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, dto.ErrCodeTimeout, false},
		{
			"field errors",
			calculator.ValidationErrors{{Field: "length", Message: "Length must be a number."}},
			http.StatusBadRequest, dto.ErrCodeValidation, true,
		},
		{"unknown calculator type", fmt.Errorf("%w: %q", calculator.ErrUnknownType, "x"), http.StatusBadRequest, dto.ErrCodeValidation, true},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, mockPricing := setupRouterWithMock(t)
			mockPricing.On("Total", mock.Anything, "p1", mock.Anything).Return(nil, tt.err)

			w := srv.do(http.MethodPost, "/api/products/p1/total", `{"inputs": {"length": "4"}}`)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, resp.Error)
			assert.NotEmpty(t, resp.Message)
			assert.NotEmpty(t, resp.RequestID)
			assert.Equal(t, tt.hasDetails, len(resp.Details) > 0)
		})
	}
}

func TestServiceError_InternalMessageIsTranslated(t *testing.T) {
	srv, mockPricing := setupRouterWithMock(t)
	mockPricing.On("PriceSummary", mock.Anything, "p1").Return(nil, errors.New("disk on fire"))

	w := srv.do(http.MethodGet, "/api/products/p1/price-summary", "", "Accept-Language", "pt-BR")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Ocorreu um erro inesperado", resp.Message)
	assert.NotContains(t, w.Body.String(), "disk on fire")
}

func TestHandler_PassesRequestToService(t *testing.T) {
	srv, mockPricing := setupRouterWithMock(t)
	mockPricing.On("Price", mock.Anything, mock.MatchedBy(func(req service.PriceRequest) bool {
		return req.ProductID == "p1" &&
			req.VariationID == "v1" &&
			req.Quantity == 3 &&
			req.Inputs["length"] == "1 1/2" &&
			req.RequestID == "req-9"
	})).Return(&service.PriceQuote{ProductID: "p1", Quantity: 3}, nil)
	mockPricing.On("Measurement", mock.Anything, "p1", "v2", "linear").Return(&service.ProductMeasurement{ProductID: "p1"}, nil)
	mockPricing.On("Reorder", mock.Anything, "q1", "req-10").Return(&service.PriceQuote{ReorderOf: "q1"}, nil)

	w := srv.do(http.MethodPost, "/api/products/p1/price", `{"variation_id": "v1", "inputs": {" LENGTH ": "1 1/2"}, "quantity": 3}`,
		"X-Request-ID", "req-9")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(http.MethodGet, "/api/products/p1/measurement?variation_id=v2&calculator_type=linear", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodGet, "/api/quotes/q1/reorder", "", "X-Request-ID", "req-10")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBindError(t *testing.T) {
	useJSONFieldNames()

	tests := []struct {
		name        string
		body        string
		wantCode    string
		wantDetails []string
	}{
		{"malformed", `{`, dto.ErrCodeInvalidRequest, nil},
		{"wrong type", `{"value": "x", "from": "in", "to": "ft"}`, dto.ErrCodeValidation, []string{"value"}},
		{"missing fields", `{}`, dto.ErrCodeValidation, []string{"value", "from", "to"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := setupRouterWithMock(t)
			w := srv.do(http.MethodPost, "/api/measurements/convert", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Error)
			for _, field := range tt.wantDetails {
				assert.Contains(t, resp.Details, field)
			}
		})
	}
}

func TestBindingMessage(t *testing.T) {
	useJSONFieldNames()

	type query struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest(http.MethodGet, "/?limit=500", nil)
	var q query
	err := c.ShouldBindQuery(&q)

	details, ok := validationDetails(err)
	assert.True(t, ok)
	assert.Equal(t, "must be at most 100", details["limit"])
}
