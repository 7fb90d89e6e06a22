// Package metrics provides Prometheus metrics collection for the pricing service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conversion results.
const (
	ConversionConverted   = "converted"
	ConversionPassThrough = "pass_through"
	ConversionRejected    = "rejected"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// PriceResolutionsTotal counts price resolutions by pricing mode and outcome.
	PriceResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_resolutions_total",
			Help: "Total number of price resolutions",
		},
		[]string{"mode", "result"},
	)

	// PriceResolutionDuration tracks how long a full price resolution takes,
	// storage included.
	PriceResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "price_resolution_duration_seconds",
			Help:    "Price resolution duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
	)

	// TotalMeasurementsTotal counts total-measurement computations by calculator type.
	TotalMeasurementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "total_measurements_total",
			Help: "Total number of total-measurement computations",
		},
		[]string{"calculator_type"},
	)

	// ConversionsTotal counts unit conversions requested through the API and
	// derivations, by result.
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unit_conversions_total",
			Help: "Total number of unit conversions",
		},
		[]string{"result"},
	)

	// QuotesTotal counts persisted quotes by result.
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotes_total",
			Help: "Total number of quotes persisted",
		},
		[]string{"result"},
	)

	// CacheOperationsTotal tracks settings snapshot cache operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)

	// CacheSize tracks current cache size.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Current cache size",
		},
	)

	// CacheCapacity tracks cache capacity.
	CacheCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_capacity",
			Help: "Cache capacity",
		},
	)

	// CircuitBreakerState is 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordPriceResolution records one price resolution.
func RecordPriceResolution(duration time.Duration, mode, result string) {
	PriceResolutionDuration.Observe(duration.Seconds())
	PriceResolutionsTotal.WithLabelValues(mode, result).Inc()
}

// RecordTotalMeasurement records one total-measurement computation.
func RecordTotalMeasurement(calculatorType string) {
	TotalMeasurementsTotal.WithLabelValues(calculatorType).Inc()
}

// RecordConversion records one unit conversion outcome.
func RecordConversion(result string) {
	ConversionsTotal.WithLabelValues(result).Inc()
}

// RecordQuote records a quote persistence outcome.
func RecordQuote(result string) {
	QuotesTotal.WithLabelValues(result).Inc()
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheMetrics updates cache size and capacity metrics.
func UpdateCacheMetrics(size, capacity int) {
	CacheSize.Set(float64(size))
	CacheCapacity.Set(float64(capacity))
}

// SetCircuitBreakerState publishes a breaker state.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
