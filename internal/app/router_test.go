//go:build !integration

package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/measure-pricing-service/config"
	"github.com/guttosm/measure-pricing-service/internal/circuitbreaker"
	apphttp "github.com/guttosm/measure-pricing-service/internal/http"
)

func TestInitializeRouter(t *testing.T) {
	cfg := testConfig()
	cfg.Server = config.ServerConfig{
		RateLimit:      50,
		RateBurst:      10,
		RequestTimeout: 5 * time.Second,
		CORSOrigins:    []string{"http://localhost:3000"},
		SwaggerUser:    "docs",
		SwaggerPass:    "secret",
	}

	services := InitializeServices(cfg, nil)
	t.Cleanup(services.Stop)

	components := InitializeRouter(services, &StorageComponents{Driver: config.DriverNone}, cfg)

	require.NotNil(t, components.Handler)
	require.NotNil(t, components.HealthHandler)
	assert.Equal(t, 50.0, components.Config.RateLimit)
	assert.Equal(t, 10, components.Config.RateBurst)
	assert.Equal(t, 5*time.Second, components.Config.RequestTimeout)
	assert.True(t, components.Config.EnableIdempotency)
	assert.Equal(t, "docs", components.Config.SwaggerUser)
	assert.NotNil(t, components.Config.Catalog)
	assert.NotNil(t, components.Config.Quotes)
	assert.NotNil(t, components.Config.UnitDefaults)
}

func TestInitializeRouter_RegistersStorageHealth(t *testing.T) {
	cb := circuitbreaker.New(circuitbreaker.Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Hour, Name: quotesBreaker})
	_ = cb.Execute(context.Background(), func() error { return errors.New("down") })

	storage := &StorageComponents{
		Driver:          config.DriverMongo,
		Checker:         apphttp.HealthCheckFunc(func(context.Context) error { return nil }),
		CircuitBreakers: map[string]*circuitbreaker.CircuitBreaker{quotesBreaker: cb},
	}

	services := InitializeServices(testConfig(), storage)
	t.Cleanup(services.Stop)
	components := InitializeRouter(services, storage, testConfig())
	router := apphttp.NewRouter(components.Handler, components.HealthHandler, components.Config)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"mongo":"ok"`)
	assert.Contains(t, w.Body.String(), `"mongodb_quotes_circuit":"open"`)
}
