//go:build !integration

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/measure-pricing-service/internal/logger"
)

func Test_levelFor(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   zerolog.Level
	}{
		{name: "2xx returns info", statusCode: 200, expected: zerolog.InfoLevel},
		{name: "3xx returns info", statusCode: 301, expected: zerolog.InfoLevel},
		{name: "4xx returns warn", statusCode: 400, expected: zerolog.WarnLevel},
		{name: "422 returns warn", statusCode: 422, expected: zerolog.WarnLevel},
		{name: "5xx returns error", statusCode: 500, expected: zerolog.ErrorLevel},
		{name: "503 returns error", statusCode: 503, expected: zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, levelFor(tt.statusCode))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		statusCode int
		wantLevel  string
	}{
		{name: "successful request logs info", statusCode: 200, wantLevel: "info"},
		{name: "client error logs warn", statusCode: 400, wantLevel: "warn"},
		{name: "server error logs error", statusCode: 500, wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger.InitWithWriter("debug", false, &buf)
			t.Cleanup(func() { logger.Init("info", false) })

			router := gin.New()
			router.Use(RequestID(), RequestLogger())
			router.GET("/api/products/:id/measurement", func(c *gin.Context) {
				c.Status(tt.statusCode)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/products/p1/measurement", nil)
			req.Header.Set(RequestIDHeader, "req-1")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.statusCode, w.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "HTTP request", entry["message"])
			assert.Equal(t, "req-1", entry["request_id"])
			assert.Equal(t, "/api/products/p1/measurement", entry["path"])
			assert.Equal(t, "/api/products/:id/measurement", entry["route"])
			assert.Equal(t, float64(tt.statusCode), entry["status_code"])
		})
	}
}
