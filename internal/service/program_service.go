package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type programRepository interface {
	List(ctx context.Context, ids []string, activeOnly bool) ([]models.Program, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	Deactivate(ctx context.Context, id string) error
}

type programAssignmentRepository interface {
	ListActiveByUser(ctx context.Context, userID string) ([]models.ProgramAssignment, error)
	ListByProgram(ctx context.Context, programID string) ([]models.ProgramAssignmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.ProgramAssignment, error)
	Exists(ctx context.Context, userID, programID string) (bool, error)
	Create(ctx context.Context, assignment *models.ProgramAssignment) error
	SetDefault(ctx context.Context, userID, assignmentID string) error
	Delete(ctx context.Context, id string) error
}

type programUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ProgramService manages programs and the user assignments inside them.
type ProgramService struct {
	programs    programRepository
	assignments programAssignmentRepository
	users       programUserRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewProgramService constructs the service.
func NewProgramService(programs programRepository, assignments programAssignmentRepository, users programUserRepository, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProgramService{programs: programs, assignments: assignments, users: users, validator: validate, logger: logger}
}

// List returns the programs visible under the given filter. An unrestricted
// filter sees everything; a scoped filter sees only its own program. Scoped
// principals additionally get their full assignment list through ListMine.
func (s *ProgramService) List(ctx context.Context, filter ScopeFilter, activeOnly bool) ([]models.Program, error) {
	var ids []string
	if !filter.Unrestricted {
		ids = []string{filter.ProgramID}
	}
	programs, err := s.programs.List(ctx, ids, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// ListMine returns the programs the user is assigned to, regardless of any
// request context. This backs the program switcher.
func (s *ProgramService) ListMine(ctx context.Context, userID string) ([]models.ProgramAssignment, error) {
	assignments, err := s.assignments.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Get returns one program within the filter's scope. A program outside the
// scope reads as not found.
func (s *ProgramService) Get(ctx context.Context, filter ScopeFilter, id string) (*models.Program, error) {
	if !filter.Unrestricted && filter.ProgramID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
	}
	program, err := s.programs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// Create registers a new program.
func (s *ProgramService) Create(ctx context.Context, actorID string, req dto.CreateProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	program := &models.Program{
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	if err := s.programs.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	s.recordAudit(ctx, actorID, models.AuditActionProgramCreate, program.ID, nil, program)
	return program, nil
}

// Update changes mutable fields of a program.
func (s *ProgramService) Update(ctx context.Context, actorID, id string, req dto.UpdateProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program payload")
	}
	program, err := s.programs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	before := *program
	if req.Name != nil {
		program.Name = *req.Name
	}
	if req.Description != nil {
		program.Description = *req.Description
	}
	if req.Active != nil {
		program.Active = *req.Active
	}
	if err := s.programs.Update(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}
	s.recordAudit(ctx, actorID, models.AuditActionProgramUpdate, program.ID, &before, program)
	return program, nil
}

// Deactivate soft-deletes a program. Assignments into an inactive program
// stop resolving at the access guard immediately.
func (s *ProgramService) Deactivate(ctx context.Context, actorID, id string) error {
	program, err := s.programs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	if err := s.programs.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate program")
	}
	s.recordAudit(ctx, actorID, models.AuditActionProgramDelete, id, program, nil)
	return nil
}

// ListTeam returns the program's assignments with user details.
func (s *ProgramService) ListTeam(ctx context.Context, programID string) ([]models.ProgramAssignmentDetail, error) {
	team, err := s.assignments.ListByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program team")
	}
	return team, nil
}

// AssignUser grants a user a role within a program. Assigning a super admin
// is rejected: their access never flows through assignments.
func (s *ProgramService) AssignUser(ctx context.Context, actorID, programID string, req dto.AssignUserRequest) (*models.ProgramAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if !req.RoleInProgram.Valid() || req.RoleInProgram == models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role cannot be assigned within a program")
	}

	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user account is inactive")
	}

	exists, err := s.assignments.Exists(ctx, req.UserID, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user is already assigned to this program")
	}

	assignment := &models.ProgramAssignment{
		UserID:        req.UserID,
		ProgramID:     programID,
		RoleInProgram: req.RoleInProgram,
		IsDefault:     req.IsDefault,
		AssignedBy:    actorID,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.recordAudit(ctx, actorID, models.AuditActionAssignmentCreate, assignment.ID, nil, assignment)
	return assignment, nil
}

// SetDefaultAssignment marks one of the user's assignments as default.
func (s *ProgramService) SetDefaultAssignment(ctx context.Context, userID, assignmentID string) error {
	if err := s.assignments.SetDefault(ctx, userID, assignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set default assignment")
	}
	return nil
}

// RemoveAssignment revokes a user's assignment.
func (s *ProgramService) RemoveAssignment(ctx context.Context, actorID, programID, assignmentID string) error {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if assignment.ProgramID != programID {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove assignment")
	}
	s.recordAudit(ctx, actorID, models.AuditActionAssignmentDelete, assignmentID, assignment, nil)
	return nil
}

func (s *ProgramService) recordAudit(ctx context.Context, actorID, action, resourceID string, oldValue, newValue interface{}) {
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "program",
		ResourceID: &resourceID,
	}
	if oldValue != nil {
		if raw, err := json.Marshal(oldValue); err == nil {
			log.OldValues = raw
		}
	}
	if newValue != nil {
		if raw, err := json.Marshal(newValue); err == nil {
			log.NewValues = raw
		}
	}
	if err := s.users.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record program audit log", zap.Error(err))
	}
}
