//go:build integration

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/measure-pricing-service/config"
	"github.com/guttosm/measure-pricing-service/internal/calculator"
)

func TestInitializeApp_Integration(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Server:   config.ServerConfig{Port: "8080", RateLimit: 100, RateBurst: 100, RequestTimeout: 5 * time.Second},
		Cache:    config.CacheConfig{Size: 100, TTL: time.Minute},
		Database: mongoDatabaseConfig(t),
		Pricing:  config.PricingConfig{Precision: 3},
		Units:    calculator.UnitDefaults{Dimension: "in", Area: "sq. ft.", Volume: "cu. ft.", Weight: "lbs"},
	}

	app := InitializeApp(cfg)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	require.Equal(t, config.DriverMongo, app.Storage.Driver)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mongodb_catalog_circuit":"closed"`)

	w = do(http.MethodGet, "/api/unit-defaults", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"stored"`)

	w = do(http.MethodPut, "/api/products/oak", `{"name": "Oak", "price": "3"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
