package http

import (
	"github.com/gin-gonic/gin"
)

// RouteGroup defines a group of routes that can be registered.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup)
}

// PricingRoutes exposes measurement conversion and line pricing.
type PricingRoutes struct {
	handler *Handler
}

// NewPricingRoutes creates the pricing route group.
func NewPricingRoutes(handler *Handler) *PricingRoutes {
	return &PricingRoutes{handler: handler}
}

// RegisterRoutes registers the calculator routes.
func (r *PricingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/measurements/convert", r.handler.Convert)

	products := rg.Group("/products/:id")
	products.POST("/total", r.handler.Total)
	products.POST("/price", r.handler.Price)
	products.POST("/quantity", r.handler.Quantity)
	products.GET("/measurement", r.handler.Measurement)
	products.GET("/price-summary", r.handler.PriceSummary)

	rg.GET("/quotes/:id/reorder", r.handler.Reorder)
}

// CatalogRoutes exposes product administration.
type CatalogRoutes struct {
	handler *CatalogHandler
}

// NewCatalogRoutes creates the catalog route group.
func NewCatalogRoutes(handler *CatalogHandler) *CatalogRoutes {
	return &CatalogRoutes{handler: handler}
}

// RegisterRoutes registers the catalog routes.
func (r *CatalogRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", r.handler.ListProducts)

	products := rg.Group("/products/:id")
	products.GET("", r.handler.GetProduct)
	products.PUT("", r.handler.SaveProduct)
	products.GET("/settings", r.handler.GetSettings)
	products.PUT("/settings", r.handler.SaveSettings)
	products.GET("/pricing-rules", r.handler.GetPricingRules)
	products.PUT("/pricing-rules", r.handler.SavePricingRules)
}

// QuoteRoutes exposes stored quotes.
type QuoteRoutes struct {
	handler *QuotesHandler
}

// NewQuoteRoutes creates the quote route group.
func NewQuoteRoutes(handler *QuotesHandler) *QuoteRoutes {
	return &QuoteRoutes{handler: handler}
}

// RegisterRoutes registers the quote routes.
func (r *QuoteRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes", r.handler.ListQuotes)
	rg.GET("/quotes/:id", r.handler.GetQuote)
}

// UnitDefaultsRoutes exposes the store unit defaults.
type UnitDefaultsRoutes struct {
	handler *UnitDefaultsHandler
}

// NewUnitDefaultsRoutes creates the unit defaults route group.
func NewUnitDefaultsRoutes(handler *UnitDefaultsHandler) *UnitDefaultsRoutes {
	return &UnitDefaultsRoutes{handler: handler}
}

// RegisterRoutes registers the unit defaults routes.
func (r *UnitDefaultsRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	units := rg.Group("/unit-defaults")
	units.GET("", r.handler.Get)
	units.PUT("", r.handler.Replace)
	units.GET("/history", r.handler.History)
	units.PUT("/:id", r.handler.Correct)
}
