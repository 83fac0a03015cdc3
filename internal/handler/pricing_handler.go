package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/middleware"
	"github.com/noah-isme/academy-admin-api/internal/service"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"
)

// PricingHandler exposes price resolution and pricing entry endpoints.
type PricingHandler struct {
	pricing *service.PricingService
	export  *service.ExportService
}

// NewPricingHandler constructs PricingHandler.
func NewPricingHandler(pricing *service.PricingService, export *service.ExportService) *PricingHandler {
	return &PricingHandler{pricing: pricing, export: export}
}

// Lookup godoc
// @Summary Resolve the price for an enrollment combination
// @Tags Pricing
// @Accept json
// @Produce json
// @Param payload body dto.PriceLookupRequest true "Lookup payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /pricing/lookup [post]
func (h *PricingHandler) Lookup(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.PriceLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.pricing.LookupPrice(c.Request.Context(), scope.ProgramScope(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Matrix godoc
// @Summary Get a facility's pricing matrix grouped by course
// @Tags Pricing
// @Produce json
// @Param facilityId path string true "Facility ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /pricing/matrix/{facilityId} [get]
func (h *PricingHandler) Matrix(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	matrix, err := h.pricing.GetMatrix(c.Request.Context(), c.Param("facilityId"), scope.ProgramScope())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matrix, nil, middleware.ExtractMeta(c))
}

// ExportMatrix godoc
// @Summary Download a facility's pricing matrix as CSV or PDF
// @Tags Pricing
// @Produce octet-stream
// @Param facilityId path string true "Facility ID"
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /pricing/matrix/{facilityId}/export [get]
func (h *PricingHandler) ExportMatrix(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	doc, err := h.export.PricingMatrix(c.Request.Context(), c.Param("facilityId"), scope.ProgramScope(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

// CreateEntry godoc
// @Summary Create a pricing entry
// @Tags Pricing
// @Accept json
// @Produce json
// @Param payload body dto.CreatePricingEntryRequest true "Entry payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /pricing/entries [post]
func (h *PricingHandler) CreateEntry(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.CreatePricingEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.pricing.CreateEntry(c.Request.Context(), scope.ProgramScope(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// UpdateEntry godoc
// @Summary Update a pricing entry's price or notes
// @Tags Pricing
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body dto.UpdatePricingEntryRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /pricing/entries/{id} [put]
func (h *PricingHandler) UpdateEntry(c *gin.Context) {
	var req dto.UpdatePricingEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.pricing.UpdateEntry(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// DeactivateEntry godoc
// @Summary Deactivate a pricing entry
// @Tags Pricing
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /pricing/entries/{id} [delete]
func (h *PricingHandler) DeactivateEntry(c *gin.Context) {
	if err := h.pricing.DeactivateEntry(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Copy active pricing entries between facilities
// @Tags Pricing
// @Accept json
// @Produce json
// @Param payload body dto.ImportPricingRequest true "Import payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /pricing/import [post]
func (h *PricingHandler) Import(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.ImportPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	summary, err := h.pricing.ImportFromFacility(c.Request.Context(), scope.ProgramScope(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
