package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/dto"
	"github.com/guttosm/measure-pricing-service/internal/repository"
	"github.com/guttosm/measure-pricing-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testUnits = calculator.UnitDefaults{Dimension: "ft", Area: "sq. ft.", Volume: "cu. ft.", Weight: "lbs"}

type testServer struct {
	router *gin.Engine
	store  *repository.SQLiteStore
}

// newTestServer wires the real services over an in-memory SQLite store.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := repository.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	snapshotCache := service.NewShardedCache(100, time.Minute, 4)
	t.Cleanup(snapshotCache.Stop)

	var snapshots *service.SettingsStore
	units := service.NewUnitDefaultsService(store.UnitDefaults(), testUnits, func() { snapshots.InvalidateAll() })
	snapshots = service.NewSettingsStore(store.Settings(), store.PricingRules(), units, snapshotCache)
	quotes := service.NewQuotesService(store.Quotes())

	pricingSvc := service.NewPricingService(store.Products(), snapshots, units, quotes)
	catalog := service.NewCatalogService(store.Products(), store.Settings(), store.PricingRules(), snapshots)

	cfg := DefaultRouterConfig()
	cfg.RateLimit = 0
	cfg.Catalog = NewCatalogHandler(catalog)
	cfg.Quotes = NewQuotesHandler(quotes)
	cfg.UnitDefaults = NewUnitDefaultsHandler(units)

	health := NewHealthHandler()
	health.RegisterChecker("sqlite", store)

	return &testServer{router: NewRouter(NewHandler(pricingSvc), health, cfg), store: store}
}

func (s *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// mustDo fails the test unless the request answers with status.
func (s *testServer) mustDo(t *testing.T, status int, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := s.do(method, path, body)
	require.Equal(t, status, w.Code, w.Body.String())
	return w
}

// decodeData unmarshals the data field of a success envelope into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	var envelope struct {
		Data      json.RawMessage `json:"data"`
		RequestID string          `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.RequestID)
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

const dimFieldJSON = `{"label": "%s", "unit": "ft", "enabled": "yes", "options": []}`

// areaSettings is an area-dimension settings record. An empty unit disables
// pricing.
func areaSettings(unit, overage string, inventory bool) string {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	return `{
		"calculator_type": "area-dimension",
		"area-dimension": {
			"pricing": {
				"enabled": "` + yesNo(unit != "") + `",
				"unit": "` + unit + `",
				"overage": "` + overage + `",
				"calculator": {"enabled": "` + yesNo(unit != "") + `"},
				"inventory": {"enabled": "` + yesNo(inventory) + `"},
				"weight": {"enabled": "no"}
			},
			"length": ` + strings.Replace(dimFieldJSON, "%s", "Length", 1) + `,
			"width": ` + strings.Replace(dimFieldJSON, "%s", "Width", 1) + `
		}
	}`
}

// seedAreaProduct stores a product priced per square foot with a 10% overage.
func (s *testServer) seedAreaProduct(t *testing.T, id string) {
	t.Helper()
	s.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/"+id, `{"name": "Oak flooring", "price": "2.50"}`)
	s.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/"+id+"/settings", areaSettings("sq. ft.", "10", false))
}

func TestHandler_Convert(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "inches to feet",
			body:           `{"value": 18, "from": "in", "to": "ft"}`,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var got service.Conversion
				decodeData(t, w, &got)
				assert.InDelta(t, 1.5, got.Result, 1e-9)
				assert.True(t, got.Converted)
			},
		},
		{
			name:           "unrelated units pass through",
			body:           `{"value": 3, "from": "lbs", "to": "ft"}`,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var got service.Conversion
				decodeData(t, w, &got)
				assert.Equal(t, 3.0, got.Result)
				assert.False(t, got.Converted)
			},
		},
		{
			name:           "missing value",
			body:           `{"from": "in", "to": "ft"}`,
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeError(t, w)
				assert.Equal(t, dto.ErrCodeValidation, resp.Error)
				assert.Contains(t, resp.Details, "value")
			},
		},
		{
			name:           "blank unit",
			body:           `{"value": 1, "from": " ", "to": "ft"}`,
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Contains(t, decodeError(t, w).Details, "unit")
			},
		},
		{
			name:           "invalid JSON",
			body:           `invalid`,
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, dto.ErrCodeInvalidRequest, decodeError(t, w).Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(http.MethodPost, "/api/measurements/convert", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestHandler_Total(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAreaProduct(t, "oak")

	t.Run("applies overage", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusOK, http.MethodPost, "/api/products/oak/total", `{"inputs": {"Length": 4, "width": "5"}}`)

		var got service.TotalResult
		decodeData(t, w, &got)
		assert.Equal(t, calculator.TypeAreaDimension, got.CalculatorType)
		assert.Equal(t, 22.0, got.Total.Value)
		assert.Equal(t, "sq. ft.", got.Total.Unit)
		assert.Equal(t, 20.0, got.Overage.Original)
	})

	t.Run("reports invalid fields", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusBadRequest, http.MethodPost, "/api/products/oak/total", `{"inputs": {"length": "4"}}`)

		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error)
		assert.Contains(t, resp.Details, "width")
	})

	t.Run("empty inputs", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusBadRequest, http.MethodPost, "/api/products/oak/total", `{"inputs": {}}`)
		assert.Contains(t, decodeError(t, w).Details, "inputs")
	})

	t.Run("unknown product", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusNotFound, http.MethodPost, "/api/products/nope/total", `{"inputs": {"length": "4"}}`)
		assert.Equal(t, dto.ErrCodeNotFound, decodeError(t, w).Error)
	})

	t.Run("calculator disabled", func(t *testing.T) {
		srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/plain", `{"price": "1"}`)
		w := srv.mustDo(t, http.StatusUnprocessableEntity, http.MethodPost, "/api/products/plain/total", `{"inputs": {"length": "4"}}`)
		assert.Equal(t, dto.ErrCodeUnprocessable, decodeError(t, w).Error)
	})
}

func TestHandler_PriceAndReorder(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAreaProduct(t, "oak")

	w := srv.do(http.MethodPost, "/api/products/oak/price", `{"inputs": {"length": "4", "width": "5"}, "quantity": 2}`,
		"X-Request-ID", "req-42")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quote service.PriceQuote
	decodeData(t, w, &quote)
	require.NotEmpty(t, quote.QuoteID)
	assert.Equal(t, 22.0, quote.Line.Total.Value)
	assert.Equal(t, "55", quote.Price.Price.String())
	assert.Equal(t, "110", quote.LineTotal.String())
	assert.Equal(t, 2, quote.Quantity)

	t.Run("stored quote", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/quotes/"+quote.QuoteID, "")

		var stored struct {
			ProductID string `json:"product_id"`
			RequestID string `json:"request_id"`
			Total     struct {
				Value float64 `json:"value"`
			} `json:"total"`
		}
		decodeData(t, w, &stored)
		assert.Equal(t, "oak", stored.ProductID)
		assert.Equal(t, "req-42", stored.RequestID)
		assert.Equal(t, 22.0, stored.Total.Value)
	})

	t.Run("reorder at a new overage", func(t *testing.T) {
		srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/oak/settings", areaSettings("sq. ft.", "20", false))

		w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/quotes/"+quote.QuoteID+"/reorder", "")

		var again service.PriceQuote
		decodeData(t, w, &again)
		assert.Equal(t, quote.QuoteID, again.ReorderOf)
		assert.NotEqual(t, quote.QuoteID, again.QuoteID)
		assert.InDelta(t, 24.0, again.Line.Total.Value, 1e-9)
		assert.Equal(t, 2, again.Quantity)
	})

	t.Run("lists quotes of the product", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/quotes?product_id=oak&limit=10", "")

		var page dto.QuoteListResponse
		decodeData(t, w, &page)
		assert.Equal(t, int64(2), page.Total)
		assert.Len(t, page.Quotes, 2)
		assert.Equal(t, 10, page.Limit)
	})

	t.Run("unknown quote", func(t *testing.T) {
		srv.mustDo(t, http.StatusNotFound, http.MethodGet, "/api/quotes/missing", "")
		srv.mustDo(t, http.StatusNotFound, http.MethodGet, "/api/quotes/missing/reorder", "")
	})

	t.Run("invalid page size", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusBadRequest, http.MethodGet, "/api/quotes?limit=1000", "")
		assert.Contains(t, decodeError(t, w).Details, "limit")
	})
}

func TestHandler_PriceIdempotency(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAreaProduct(t, "oak")
	body := `{"inputs": {"length": "4", "width": "5"}}`

	first := srv.do(http.MethodPost, "/api/products/oak/price", body, "Idempotency-Key", "order-7")
	require.Equal(t, http.StatusOK, first.Code)
	second := srv.do(http.MethodPost, "/api/products/oak/price", body, "Idempotency-Key", "order-7")
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))

	w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/quotes?product_id=oak", "")
	var page dto.QuoteListResponse
	decodeData(t, w, &page)
	assert.Equal(t, int64(1), page.Total)
}

func TestHandler_PriceErrors(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAreaProduct(t, "oak")

	t.Run("no matching rule", func(t *testing.T) {
		srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/oak/pricing-rules",
			`{"rules": [{"range_start": "0", "range_end": "5", "regular_price": "3"}]}`)
		t.Cleanup(func() {
			srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/oak/pricing-rules", `{"rules": []}`)
		})

		w := srv.mustDo(t, http.StatusUnprocessableEntity, http.MethodPost, "/api/products/oak/price", `{"inputs": {"length": "4", "width": "5"}}`)
		assert.Equal(t, dto.ErrCodeUnprocessable, decodeError(t, w).Error)
	})

	t.Run("unknown variation", func(t *testing.T) {
		srv.mustDo(t, http.StatusNotFound, http.MethodPost, "/api/products/oak/price",
			`{"variation_id": "v9", "inputs": {"length": "4", "width": "5"}}`)
	})

	t.Run("negative quantity", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusBadRequest, http.MethodPost, "/api/products/oak/price",
			`{"inputs": {"length": "4", "width": "5"}, "quantity": -1}`)
		assert.Contains(t, decodeError(t, w).Details, "quantity")
	})

	t.Run("insufficient stock", func(t *testing.T) {
		srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/tracked", `{"price": "2.50", "stock": 10}`)
		srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/tracked/settings", areaSettings("sq. ft.", "", true))

		w := srv.mustDo(t, http.StatusConflict, http.MethodPost, "/api/products/tracked/price", `{"inputs": {"length": "4", "width": "5"}}`)
		assert.Equal(t, dto.ErrCodeConflict, decodeError(t, w).Error)
	})
}

func TestHandler_Quantity(t *testing.T) {
	srv := newTestServer(t)
	srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/tile", `{"price": "4", "dimensions": {"length": 2, "width": 2}}`)
	srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/tile/settings", areaSettings("", "", false))

	w := srv.mustDo(t, http.StatusOK, http.MethodPost, "/api/products/tile/quantity", `{"inputs": {"length": "4", "width": "5"}}`)

	var got service.QuantityResult
	decodeData(t, w, &got)
	assert.Equal(t, 4.0, got.ProductMeasurement.Value)
	assert.Equal(t, 5, got.Quantity)

	t.Run("pricing mode rejects", func(t *testing.T) {
		srv.seedAreaProduct(t, "oak")
		srv.mustDo(t, http.StatusUnprocessableEntity, http.MethodPost, "/api/products/oak/quantity", `{"inputs": {"length": "4", "width": "5"}}`)
	})
}

func TestHandler_Measurement(t *testing.T) {
	srv := newTestServer(t)
	srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/tile", `{"price": "4", "dimensions": {"length": 2, "width": 3}}`)
	srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/tile/settings", areaSettings("", "", false))

	t.Run("derives area", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/products/tile/measurement", "")

		var got service.ProductMeasurement
		decodeData(t, w, &got)
		assert.Equal(t, calculator.TypeAreaDimension, got.CalculatorType)
		assert.Equal(t, 6.0, got.Measurement.Value)
		assert.Equal(t, "sq. ft.", got.Measurement.Unit)
	})

	t.Run("unknown calculator type", func(t *testing.T) {
		w := srv.mustDo(t, http.StatusBadRequest, http.MethodGet, "/api/products/tile/measurement?calculator_type=bogus", "")
		assert.Contains(t, decodeError(t, w).Details, "calculator_type")
	})
}

func TestHandler_PriceSummary(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAreaProduct(t, "oak")
	srv.mustDo(t, http.StatusOK, http.MethodPut, "/api/products/oak/pricing-rules",
		`{"rules": [{"range_start": "0", "range_end": "10", "regular_price": "3.00"}, {"range_start": "10.001", "regular_price": "2.50", "sale_price": "2.25"}]}`)

	w := srv.mustDo(t, http.StatusOK, http.MethodGet, "/api/products/oak/price-summary", "")

	var got service.PriceSummary
	decodeData(t, w, &got)
	assert.Equal(t, "oak", got.ProductID)
	assert.Equal(t, calculator.TypeAreaDimension, got.CalculatorType)
	assert.Nil(t, got.Variations)

	srv.mustDo(t, http.StatusNotFound, http.MethodGet, "/api/products/nope/price-summary", "")
}
