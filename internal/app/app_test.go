//go:build !integration

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/measure-pricing-service/config"
)

func TestInitializeApp(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		ready  int
	}{
		{"without storage", config.DriverNone, http.StatusOK},
		{"with sqlite", config.DriverSQLite, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Server = config.ServerConfig{Port: "8080", RequestTimeout: time.Second}
			cfg.Database.Driver = tt.driver
			cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "pricing.db")

			app := InitializeApp(cfg)
			t.Cleanup(func() { assert.NoError(t, app.Close(context.Background())) })

			require.NotNil(t, app.Router)
			assert.Equal(t, tt.driver, app.Storage.Driver)

			w := httptest.NewRecorder()
			app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.ready, w.Code)
		})
	}
}

func TestInitializeApp_PricesAgainstSQLite(t *testing.T) {
	cfg := testConfig()
	cfg.Server = config.ServerConfig{Port: "8080", RequestTimeout: time.Second}
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "pricing.db")

	app := InitializeApp(cfg)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPut, "/api/products/oak", `{"name": "Oak", "price": "3"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(http.MethodGet, "/api/unit-defaults", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"stored"`, "startup seeds the configured units")
}

func TestInitializeApp_UnreachableStorageFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = config.DriverSQLite
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	cfg.Database.SQLitePath = filepath.Join(blocker, "pricing.db")

	app := InitializeApp(cfg)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	assert.Equal(t, config.DriverNone, app.Storage.Driver)
}
