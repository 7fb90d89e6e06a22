package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewShardedRateLimiter(t *testing.T) {
	tests := []struct {
		name       string
		perSecond  float64
		burst      int
		numShards  int
		wantShards int
		wantBurst  int
	}{
		{"zero shards use the default", 10, 20, 0, defaultNumShards, 20},
		{"negative shards use the default", 10, 20, -3, defaultNumShards, 20},
		{"burst follows the rate", 2.5, 0, 8, 8, 3},
		{"slow rate still allows one", 0.1, 0, 2, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewShardedRateLimiter(tt.perSecond, tt.burst, tt.numShards)
			defer rl.Stop()

			assert.Len(t, rl.shards, tt.wantShards)
			assert.Equal(t, tt.wantShards, rl.numShards)
			assert.Equal(t, rate.Limit(tt.perSecond), rl.rate)
			assert.Equal(t, tt.wantBurst, rl.burst)
		})
	}

	rl := NewRateLimiter(10, 20)
	defer rl.Stop()
	assert.Equal(t, defaultNumShards, rl.numShards)
}

func TestShardedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name        string
		burst       int
		requests    int
		wantAllowed int
		wantBlocked int
	}{
		{name: "all requests allowed under burst", burst: 5, requests: 3, wantAllowed: 3},
		{name: "exact burst", burst: 5, requests: 5, wantAllowed: 5},
		{name: "exceeds burst", burst: 5, requests: 8, wantAllowed: 5, wantBlocked: 3},
		{name: "single token", burst: 1, requests: 3, wantAllowed: 1, wantBlocked: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewShardedRateLimiter(1, tt.burst, 4)
			defer rl.Stop()

			now := time.Now()
			allowed, blocked := 0, 0
			for i := 0; i < tt.requests; i++ {
				if ok, _, _ := rl.allow("client", now); ok {
					allowed++
				} else {
					blocked++
				}
			}

			assert.Equal(t, tt.wantAllowed, allowed)
			assert.Equal(t, tt.wantBlocked, blocked)
		})
	}
}

func TestShardedRateLimiter_RemainingTokens(t *testing.T) {
	rl := NewShardedRateLimiter(1, 5, 4)
	defer rl.Stop()

	now := time.Now()
	for i, want := range []int{4, 3, 2, 1, 0, 0} {
		_, remaining, _ := rl.allow("client", now)
		assert.Equal(t, want, remaining, "request %d", i+1)
	}
}

func TestShardedRateLimiter_Refill(t *testing.T) {
	rl := NewShardedRateLimiter(1, 2, 4)
	defer rl.Stop()

	now := time.Now()
	rl.allow("client", now)
	rl.allow("client", now)

	ok, _, retryAfter := rl.allow("client", now)
	assert.False(t, ok)
	assert.Equal(t, time.Second, retryAfter)

	ok, remaining, _ := rl.allow("client", now.Add(time.Second))
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)
}

func TestShardedRateLimiter_MultipleIdentifiers(t *testing.T) {
	rl := NewShardedRateLimiter(1, 3, 4)
	defer rl.Stop()

	now := time.Now()
	for _, id := range []string{"client1", "client2", "client3"} {
		for i := 0; i < 3; i++ {
			ok, _, _ := rl.allow(id, now)
			assert.True(t, ok, "request %d for %s should be allowed", i+1, id)
		}
		ok, _, _ := rl.allow(id, now)
		assert.False(t, ok, "4th request for %s should be blocked", id)
	}
}

func TestShardedRateLimiter_RateLimit_PerClientIP(t *testing.T) {
	rl := NewShardedRateLimiter(0.001, 2, 4)
	defer rl.Stop()

	router := gin.New()
	router.Use(RequestID(), rl.RateLimit())
	router.POST("/api/v1/products/:id/price", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"price": "12.50"})
	})

	price := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/oak/price", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := price("10.0.0.7:5000")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, price("10.0.0.7:5001").Code, "port does not matter")

	blocked := price("10.0.0.7:5002")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), `"error":"rate_limit_exceeded"`)
	assert.Contains(t, blocked.Body.String(), blocked.Header().Get(RequestIDHeader))

	assert.Equal(t, http.StatusOK, price("10.0.0.8:5000").Code, "other clients keep their own bucket")
}

func TestShardedRateLimiter_Stats(t *testing.T) {
	rl := NewShardedRateLimiter(10, 10, 4)
	defer rl.Stop()

	now := time.Now()
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		rl.allow(id, now)
	}

	total, perShard := rl.Stats()
	assert.Equal(t, 5, total)
	assert.Len(t, perShard, 4)

	sum := 0
	for _, count := range perShard {
		sum += count
	}
	assert.Equal(t, total, sum)
}

func TestShardedRateLimiter_CleanupIdle(t *testing.T) {
	rl := NewShardedRateLimiter(10, 10, 4)
	defer rl.Stop()

	now := time.Now()
	rl.allow("old", now.Add(-2*idleTTL))
	rl.allow("fresh", now)

	rl.cleanupIdle(now)

	total, _ := rl.Stats()
	assert.Equal(t, 1, total)
}

func TestShardedRateLimiter_StopTwice(t *testing.T) {
	rl := NewShardedRateLimiter(10, 10, 4)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
