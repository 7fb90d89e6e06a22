package http

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/dto"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/service"
)

const defaultProductLimit = 50

// CatalogHandler serves product attributes and their calculator configuration.
type CatalogHandler struct {
	catalog service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListProducts handles GET /api/products requests.
//
// @Summary      List products
// @Tags         Catalog
// @Produce      json
// @Param        limit query int false "Maximum number of products" minimum(1) maximum(100)
// @Success      200 {object} dto.SuccessResponse{data=[]model.Product} "Products"
// @Failure      400 {object} dto.ErrorResponse "Invalid limit"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	builder := NewResponseBuilder(c)

	q, err := BuildQuery[dto.LimitQuery](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), q.Or(defaultProductLimit))
	if err != nil {
		builder.ServiceError(err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	builder.SuccessOK(products)
}

// GetProduct handles GET /api/products/{id} requests.
//
// @Summary      Get a product
// @Tags         Catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.SuccessResponse{data=model.Product} "Product"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	builder := NewResponseBuilder(c)

	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(product)
}

// SaveProduct handles PUT /api/products/{id} requests. The path id wins
// over any id in the body.
//
// @Summary      Create or replace a product
// @Tags         Catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body model.Product true "Product attributes"
// @Success      200 {object} dto.SuccessResponse{data=model.Product} "Saved product"
// @Failure      400 {object} dto.ErrorResponse "Invalid product"
// @Failure      503 {object} dto.ErrorResponse "Storage unavailable"
// @Router       /api/products/{id} [put]
func (h *CatalogHandler) SaveProduct(c *gin.Context) {
	builder := NewResponseBuilder(c)

	product, err := BuildRequest[model.Product](c)
	if err != nil {
		builder.BindError(err)
		return
	}
	product.ID = c.Param("id")

	saved, err := h.catalog.SaveProduct(c.Request.Context(), product)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(saved)
}

// GetSettings handles GET /api/products/{id}/settings requests.
//
// @Summary      Get calculator settings
// @Description  Returns the product's settings record migrated to the current schema, or the defaults when none is stored.
// @Tags         Catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.SuccessResponse "Settings record"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Router       /api/products/{id}/settings [get]
func (h *CatalogHandler) GetSettings(c *gin.Context) {
	builder := NewResponseBuilder(c)

	rec, err := h.catalog.GetSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(rec)
}

// SaveSettings handles PUT /api/products/{id}/settings requests.
//
// @Summary      Replace calculator settings
// @Description  Validates the record and stores it normalized to the current schema. Older records are migrated first.
// @Tags         Catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body object true "Settings record"
// @Success      200 {object} dto.SuccessResponse "Stored record"
// @Failure      400 {object} dto.ErrorResponse "Invalid settings, with per-field details"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Router       /api/products/{id}/settings [put]
func (h *CatalogHandler) SaveSettings(c *gin.Context) {
	builder := NewResponseBuilder(c)

	rec, err := BuildRequest[calculator.Record](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	saved, err := h.catalog.SaveSettings(c.Request.Context(), c.Param("id"), *rec)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(saved)
}

// GetPricingRules handles GET /api/products/{id}/pricing-rules requests.
//
// @Summary      Get pricing rules
// @Tags         Catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.SuccessResponse{data=[]pricing.Rule} "Rules in stored order"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Router       /api/products/{id}/pricing-rules [get]
func (h *CatalogHandler) GetPricingRules(c *gin.Context) {
	builder := NewResponseBuilder(c)

	rules, err := h.catalog.GetPricingRules(c.Request.Context(), c.Param("id"))
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(rules)
}

// SavePricingRules handles PUT /api/products/{id}/pricing-rules requests.
//
// @Summary      Replace pricing rules
// @Description  Replaces the product's rules. Rows with an unparsable range start or no regular price are dropped; the rest keep their submitted order.
// @Tags         Catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body dto.PricingRulesRequest true "Rules"
// @Success      200 {object} dto.SuccessResponse{data=[]pricing.Rule} "Stored rules"
// @Failure      400 {object} dto.ErrorResponse "Bad request - invalid input"
// @Failure      404 {object} dto.ErrorResponse "Product not found"
// @Router       /api/products/{id}/pricing-rules [put]
func (h *CatalogHandler) SavePricingRules(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.PricingRulesRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	rules, err := h.catalog.SavePricingRules(c.Request.Context(), c.Param("id"), req.Rules)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(rules)
}
