package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/service"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"
)

// CatalogHandler exposes facility and course endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListFacilities godoc
// @Summary List facilities
// @Tags Catalog
// @Produce json
// @Param active query bool false "Active facilities only"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /facilities [get]
func (h *CatalogHandler) ListFacilities(c *gin.Context) {
	facilities, err := h.catalog.ListFacilities(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facilities, nil)
}

// GetFacility godoc
// @Summary Get one facility
// @Tags Catalog
// @Produce json
// @Param id path string true "Facility ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /facilities/{id} [get]
func (h *CatalogHandler) GetFacility(c *gin.Context) {
	facility, err := h.catalog.GetFacility(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, facility, nil)
}

// CreateFacility godoc
// @Summary Register a facility
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateFacilityRequest true "Facility payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /facilities [post]
func (h *CatalogHandler) CreateFacility(c *gin.Context) {
	var req dto.CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	facility, err := h.catalog.CreateFacility(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, facility)
}

// ListCourses godoc
// @Summary List courses in the current scope
// @Tags Catalog
// @Produce json
// @Param active query bool false "Active courses only"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	courses, err := h.catalog.ListCourses(c.Request.Context(), scope, c.Query("active") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// GetCourse godoc
// @Summary Get one course
// @Tags Catalog
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	course, err := h.catalog.GetCourse(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// CreateCourse godoc
// @Summary Create a course in the current program
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.catalog.CreateCourse(c.Request.Context(), scope.ProgramID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [put]
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.catalog.UpdateCourse(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
