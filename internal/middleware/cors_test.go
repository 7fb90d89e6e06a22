package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.POST("/api/v1/products/:id/price", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"price": "12.50"})
	})
	router.GET("/api/v1/measurements/units", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"units": []string{"ft", "m"}})
	})
	return router
}

func TestCORS_Preflight(t *testing.T) {
	router := corsRouter([]string{"https://shop.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products/p-1/price", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", IdempotencyKeyHeader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_SimpleRequests(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"storefront origin", []string{"https://shop.example.com"}, "https://shop.example.com", http.StatusOK, "https://shop.example.com"},
		{"local dev origin by default", nil, "http://127.0.0.1:3000", http.StatusOK, "http://127.0.0.1:3000"},
		{"foreign origin", []string{"https://shop.example.com"}, "https://other.example.org", http.StatusForbidden, ""},
		{"server to server call", []string{"https://shop.example.com"}, "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/measurements/units", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			corsRouter(tt.origins).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_ExposesPricingHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/p-1/price", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	corsRouter(nil).ServeHTTP(w, req)

	exposed := w.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{RequestIDHeader, IdempotencyReplayedHeader, "Retry-After"} {
		assert.Contains(t, strings.ToLower(exposed), strings.ToLower(h))
	}
}
