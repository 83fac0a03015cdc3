package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/service"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"
)

// CurriculumHandler exposes level and module endpoints.
type CurriculumHandler struct {
	curriculum *service.CurriculumService
}

// NewCurriculumHandler constructs CurriculumHandler.
func NewCurriculumHandler(curriculum *service.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{curriculum: curriculum}
}

// ListLevels godoc
// @Summary List levels of a course
// @Tags Curriculum
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{courseId}/levels [get]
func (h *CurriculumHandler) ListLevels(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	levels, err := h.curriculum.ListLevels(c.Request.Context(), scope, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, levels, nil)
}

// CreateLevel godoc
// @Summary Create a level
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body dto.CreateLevelRequest true "Level payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /levels [post]
func (h *CurriculumHandler) CreateLevel(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	level, err := h.curriculum.CreateLevel(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, level)
}

// ListModules godoc
// @Summary List modules of a level
// @Tags Curriculum
// @Produce json
// @Param levelId path string true "Level ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /levels/{levelId}/modules [get]
func (h *CurriculumHandler) ListModules(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	modules, err := h.curriculum.ListModules(c.Request.Context(), scope, c.Param("levelId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// CreateModule godoc
// @Summary Create a module
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body dto.CreateModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /modules [post]
func (h *CurriculumHandler) CreateModule(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	module, err := h.curriculum.CreateModule(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}

// DeleteModule godoc
// @Summary Delete a module
// @Tags Curriculum
// @Produce json
// @Param id path string true "Module ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /modules/{id} [delete]
func (h *CurriculumHandler) DeleteModule(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	if err := h.curriculum.DeleteModule(c.Request.Context(), scope, actorID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReorderModules godoc
// @Summary Reorder the modules of a level atomically
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param levelId path string true "Level ID"
// @Param payload body dto.ReorderRequest true "Reorder batch"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /levels/{levelId}/modules/reorder [put]
func (h *CurriculumHandler) ReorderModules(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	modules, err := h.curriculum.ReorderModules(c.Request.Context(), scope, actorID(c), c.Param("levelId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// BulkUpdateStatus godoc
// @Summary Update many module statuses with per-item isolation
// @Tags Curriculum
// @Accept json
// @Produce json
// @Param payload body dto.BulkStatusRequest true "Bulk status batch"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /modules/bulk-status [post]
func (h *CurriculumHandler) BulkUpdateStatus(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.curriculum.BulkUpdateModuleStatus(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
