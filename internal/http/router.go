package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/measure-pricing-service/internal/metrics"
	"github.com/guttosm/measure-pricing-service/internal/middleware"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	// RateLimit is the sustained requests per second per client. Zero
	// disables rate limiting.
	RateLimit         float64
	RateBurst         int
	RequestTimeout    time.Duration
	EnableIdempotency bool
	CORSOrigins       []string
	SwaggerUser       string
	SwaggerPass       string

	Catalog      *CatalogHandler
	Quotes       *QuotesHandler
	UnitDefaults *UnitDefaultsHandler
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:         100,
		RateBurst:         200,
		RequestTimeout:    middleware.DefaultRequestTimeout,
		EnableIdempotency: true,
	}
}

// NewRouter creates and configures the Gin router for the pricing service.
// Optional handlers left nil in cfg have their routes omitted.
func NewRouter(handler *Handler, healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	useJSONFieldNames()
	router := gin.New()

	configureGlobalMiddleware(router, &cfg)
	registerInfrastructureRoutes(router, healthHandler, &cfg)

	api := router.Group("/api")
	configureAPIMiddleware(api, &cfg)

	for _, group := range routeGroups(handler, &cfg) {
		group.RegisterRoutes(api)
	}
	return router
}

func routeGroups(handler *Handler, cfg *RouterConfig) []RouteGroup {
	var groups []RouteGroup
	if handler != nil {
		groups = append(groups, NewPricingRoutes(handler))
	}
	if cfg.Catalog != nil {
		groups = append(groups, NewCatalogRoutes(cfg.Catalog))
	}
	if cfg.Quotes != nil {
		groups = append(groups, NewQuoteRoutes(cfg.Quotes))
	}
	if cfg.UnitDefaults != nil {
		groups = append(groups, NewUnitDefaultsRoutes(cfg.UnitDefaults))
	}
	return groups
}

// configureGlobalMiddleware sets up middleware applied to all routes.
func configureGlobalMiddleware(router *gin.Engine, cfg *RouterConfig) {
	router.Use(
		middleware.CORS(cfg.CORSOrigins),
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(),
		middleware.ErrorHandler(),
	)
}

// registerInfrastructureRoutes registers health, metrics, and documentation routes.
func registerInfrastructureRoutes(router *gin.Engine, healthHandler *HealthHandler, cfg *RouterConfig) {
	if healthHandler != nil {
		healthHandler.Register(router)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger with optional basic auth
	if cfg.SwaggerUser != "" && cfg.SwaggerPass != "" {
		authorized := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
			cfg.SwaggerUser: cfg.SwaggerPass,
		}))
		authorized.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	} else {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

// configureAPIMiddleware sets up middleware for the API group. Infrastructure
// routes are neither rate limited nor bounded by the request timeout.
func configureAPIMiddleware(api *gin.RouterGroup, cfg *RouterConfig) {
	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
		api.Use(limiter.RateLimit())
	}
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.EnableIdempotency {
		api.Use(middleware.Idempotency(middleware.DefaultIdempotencyConfig()))
	}
}
