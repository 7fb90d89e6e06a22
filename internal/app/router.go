// Package app provides router configuration.
package app

import (
	"github.com/guttosm/measure-pricing-service/config"
	"github.com/guttosm/measure-pricing-service/internal/http"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	Handler       *http.Handler
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter initializes HTTP handlers and router configuration.
func InitializeRouter(services *ServiceComponents, storage *StorageComponents, cfg config.Config) *RouterComponents {
	healthHandler := http.NewHealthHandler()
	if storage != nil {
		if storage.Checker != nil {
			healthHandler.RegisterChecker(storage.Driver, storage.Checker)
		}
		for name, cb := range storage.CircuitBreakers {
			healthHandler.RegisterCircuitBreaker(name, cb)
		}
	}

	routerCfg := http.RouterConfig{
		RateLimit:         cfg.Server.RateLimit,
		RateBurst:         cfg.Server.RateBurst,
		RequestTimeout:    cfg.Server.RequestTimeout,
		EnableIdempotency: true,
		CORSOrigins:       cfg.Server.CORSOrigins,
		SwaggerUser:       cfg.Server.SwaggerUser,
		SwaggerPass:       cfg.Server.SwaggerPass,
		Catalog:           http.NewCatalogHandler(services.Catalog),
		Quotes:            http.NewQuotesHandler(services.Quotes),
		UnitDefaults:      http.NewUnitDefaultsHandler(services.UnitDefaults),
	}

	return &RouterComponents{
		Handler:       http.NewHandler(services.Pricing),
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}
