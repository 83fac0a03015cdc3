package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/service"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"
)

// ProgramHandler exposes program and assignment endpoints.
type ProgramHandler struct {
	programs *service.ProgramService
}

// NewProgramHandler constructs ProgramHandler.
func NewProgramHandler(programs *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programs: programs}
}

// List godoc
// @Summary List programs visible in the current scope
// @Tags Programs
// @Produce json
// @Param active query bool false "Active programs only"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	activeOnly := c.Query("active") == "true"
	programs, err := h.programs.List(c.Request.Context(), scope, activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// ListMine godoc
// @Summary List the caller's program assignments
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/mine [get]
func (h *ProgramHandler) ListMine(c *gin.Context) {
	assignments, err := h.programs.ListMine(c.Request.Context(), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Get godoc
// @Summary Get one program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/{id} [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	program, err := h.programs.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Create godoc
// @Summary Create a program
// @Tags Programs
// @Accept json
// @Produce json
// @Param payload body dto.CreateProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /programs [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	var req dto.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	program, err := h.programs.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Update godoc
// @Summary Update a program
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param payload body dto.UpdateProgramRequest true "Program payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/{id} [put]
func (h *ProgramHandler) Update(c *gin.Context) {
	var req dto.UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	program, err := h.programs.Update(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Delete godoc
// @Summary Deactivate a program
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /programs/{id} [delete]
func (h *ProgramHandler) Delete(c *gin.Context) {
	if err := h.programs.Deactivate(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTeam godoc
// @Summary List a program's team assignments
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/{id}/team [get]
func (h *ProgramHandler) ListTeam(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	programID := c.Param("id")
	if !scope.Unrestricted && scope.ProgramID != programID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "program not found"))
		return
	}
	team, err := h.programs.ListTeam(c.Request.Context(), programID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// AssignUser godoc
// @Summary Assign a user to a program
// @Tags Programs
// @Accept json
// @Produce json
// @Param id path string true "Program ID"
// @Param payload body dto.AssignUserRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/{id}/team [post]
func (h *ProgramHandler) AssignUser(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	programID := c.Param("id")
	if !scope.Unrestricted && scope.ProgramID != programID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "program not found"))
		return
	}
	var req dto.AssignUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.programs.AssignUser(c.Request.Context(), actorID(c), programID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// RemoveAssignment godoc
// @Summary Remove a user's program assignment
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /programs/{id}/team/{assignmentId} [delete]
func (h *ProgramHandler) RemoveAssignment(c *gin.Context) {
	scope, ok := scopeFromContext(c)
	if !ok {
		return
	}
	programID := c.Param("id")
	if !scope.Unrestricted && scope.ProgramID != programID {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "program not found"))
		return
	}
	if err := h.programs.RemoveAssignment(c.Request.Context(), actorID(c), programID, c.Param("assignmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetDefaultAssignment godoc
// @Summary Mark one of the caller's assignments as default
// @Tags Programs
// @Produce json
// @Param assignmentId path string true "Assignment ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /programs/assignments/{assignmentId}/default [put]
func (h *ProgramHandler) SetDefaultAssignment(c *gin.Context) {
	if err := h.programs.SetDefaultAssignment(c.Request.Context(), actorID(c), c.Param("assignmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
