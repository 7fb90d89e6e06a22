package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/measure-pricing-service/internal/domain/dto"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/service"
)

const defaultHistoryLimit = 20

// UnitDefaultsHandler serves the versioned store unit defaults.
type UnitDefaultsHandler struct {
	units service.UnitDefaultsService
}

// NewUnitDefaultsHandler creates a new UnitDefaultsHandler.
func NewUnitDefaultsHandler(units service.UnitDefaultsService) *UnitDefaultsHandler {
	return &UnitDefaultsHandler{units: units}
}

// Get handles GET /api/unit-defaults requests.
//
// @Summary      Active unit defaults
// @Description  Returns the active stored configuration, or the configured fallback when nothing is stored or storage is disabled.
// @Tags         Unit Defaults
// @Produce      json
// @Success      200 {object} dto.SuccessResponse{data=dto.UnitDefaultsResponse} "Unit defaults in effect"
// @Router       /api/unit-defaults [get]
func (h *UnitDefaultsHandler) Get(c *gin.Context) {
	builder := NewResponseBuilder(c)
	ctx := c.Request.Context()

	cfg, err := h.units.GetActive(ctx)
	if err != nil && !errors.Is(err, service.ErrRepositoryNotConfigured) {
		builder.ServiceError(err)
		return
	}
	if cfg == nil {
		builder.SuccessOK(dto.UnitDefaultsResponse{
			Units:  h.units.Units(ctx),
			Source: dto.UnitsSourceConfig,
		})
		return
	}
	builder.SuccessOK(dto.UnitDefaultsResponse{
		Units:  cfg.Units,
		Source: dto.UnitsSourceStored,
		Config: cfg,
	})
}

// Replace handles PUT /api/unit-defaults requests. It stores a new version
// and makes it the active one.
//
// @Summary      Replace unit defaults
// @Tags         Unit Defaults
// @Accept       json
// @Produce      json
// @Param        request body dto.UnitDefaultsRequest true "Units"
// @Success      201 {object} dto.SuccessResponse{data=model.UnitDefaultsConfig} "New active configuration"
// @Failure      400 {object} dto.ErrorResponse "Unknown or mismatched unit"
// @Failure      503 {object} dto.ErrorResponse "Storage disabled or unavailable"
// @Router       /api/unit-defaults [put]
func (h *UnitDefaultsHandler) Replace(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.UnitDefaultsRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	cfg, err := h.units.Create(c.Request.Context(), req.Units(), req.CreatedBy)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessCreated(cfg)
}

// Correct handles PUT /api/unit-defaults/{id} requests. It rewrites one
// stored version in place without changing which version is active.
//
// @Summary      Correct a unit defaults version
// @Tags         Unit Defaults
// @Accept       json
// @Produce      json
// @Param        id path string true "Configuration ID"
// @Param        request body dto.UnitDefaultsRequest true "Units"
// @Success      200 {object} dto.SuccessResponse{data=model.UnitDefaultsConfig} "Updated configuration"
// @Failure      400 {object} dto.ErrorResponse "Unknown or mismatched unit"
// @Failure      404 {object} dto.ErrorResponse "Configuration not found"
// @Failure      503 {object} dto.ErrorResponse "Storage disabled or unavailable"
// @Router       /api/unit-defaults/{id} [put]
func (h *UnitDefaultsHandler) Correct(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.UnitDefaultsRequest](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	cfg, err := h.units.Update(c.Request.Context(), c.Param("id"), req.Units(), req.CreatedBy)
	if err != nil {
		builder.ServiceError(err)
		return
	}
	builder.SuccessOK(cfg)
}

// History handles GET /api/unit-defaults/history requests.
//
// @Summary      Unit defaults history
// @Tags         Unit Defaults
// @Produce      json
// @Param        limit query int false "Maximum number of versions" minimum(1) maximum(100)
// @Success      200 {object} dto.SuccessResponse{data=[]model.UnitDefaultsConfig} "Versions, newest first"
// @Failure      400 {object} dto.ErrorResponse "Invalid limit"
// @Failure      503 {object} dto.ErrorResponse "Storage disabled or unavailable"
// @Router       /api/unit-defaults/history [get]
func (h *UnitDefaultsHandler) History(c *gin.Context) {
	builder := NewResponseBuilder(c)

	q, err := BuildQuery[dto.LimitQuery](c)
	if err != nil {
		builder.BindError(err)
		return
	}

	configs, err := h.units.List(c.Request.Context(), q.Or(defaultHistoryLimit))
	if err != nil {
		builder.ServiceError(err)
		return
	}
	if configs == nil {
		configs = []model.UnitDefaultsConfig{}
	}
	builder.SuccessOK(configs)
}
