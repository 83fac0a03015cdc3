package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type curriculumRepository interface {
	ListLevels(ctx context.Context, courseID string) ([]models.Level, error)
	FindLevelByID(ctx context.Context, id, programID string) (*models.Level, error)
	CreateLevel(ctx context.Context, level *models.Level) error
	ListModules(ctx context.Context, levelID string) ([]models.Module, error)
	FindModuleByID(ctx context.Context, id, programID string) (*models.Module, error)
	CreateModule(ctx context.Context, module *models.Module) error
	UpdateModuleStatus(ctx context.Context, id string, status models.ModuleStatus, programID string) error
	DeleteModule(ctx context.Context, id, programID string) error
	UpdateModuleSequences(ctx context.Context, levelID string, items []dto.ReorderItem) error
}

type curriculumCourseRepository interface {
	FindByID(ctx context.Context, id, programID string) (*models.Course, error)
}

type curriculumAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CurriculumService manages levels and modules under courses. Program
// scoping reaches every operation through the course chain.
type CurriculumService struct {
	curriculum curriculumRepository
	courses    curriculumCourseRepository
	audit      curriculumAuditRepository
	bulk       *BulkService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCurriculumService constructs the service.
func NewCurriculumService(curriculum curriculumRepository, courses curriculumCourseRepository, audit curriculumAuditRepository, bulk *BulkService, validate *validator.Validate, logger *zap.Logger) *CurriculumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CurriculumService{curriculum: curriculum, courses: courses, audit: audit, bulk: bulk, validator: validate, logger: logger}
}

// ListLevels returns the levels of a course within the filter's scope.
func (s *CurriculumService) ListLevels(ctx context.Context, filter ScopeFilter, courseID string) ([]models.Level, error) {
	if _, err := s.courses.FindByID(ctx, courseID, filter.ProgramScope()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	levels, err := s.curriculum.ListLevels(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list levels")
	}
	return levels, nil
}

// CreateLevel adds a level to a course within the filter's scope.
func (s *CurriculumService) CreateLevel(ctx context.Context, filter ScopeFilter, req dto.CreateLevelRequest) (*models.Level, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid level payload")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID, filter.ProgramScope()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	level := &models.Level{
		CourseID: req.CourseID,
		Name:     req.Name,
		Sequence: req.Sequence,
		Status:   models.ModuleStatusDraft,
	}
	if err := s.curriculum.CreateLevel(ctx, level); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create level")
	}
	return level, nil
}

// ListModules returns the modules of a level within the filter's scope.
func (s *CurriculumService) ListModules(ctx context.Context, filter ScopeFilter, levelID string) ([]models.Module, error) {
	if _, err := s.curriculum.FindLevelByID(ctx, levelID, filter.ProgramScope()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "level not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load level")
	}
	modules, err := s.curriculum.ListModules(ctx, levelID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return modules, nil
}

// CreateModule adds a module to a level within the filter's scope.
func (s *CurriculumService) CreateModule(ctx context.Context, filter ScopeFilter, req dto.CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}
	if _, err := s.curriculum.FindLevelByID(ctx, req.LevelID, filter.ProgramScope()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "level not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load level")
	}
	module := &models.Module{
		LevelID:  req.LevelID,
		Name:     req.Name,
		Sequence: req.Sequence,
		Status:   models.ModuleStatusDraft,
	}
	if err := s.curriculum.CreateModule(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	return module, nil
}

// DeleteModule removes a module within the filter's scope.
func (s *CurriculumService) DeleteModule(ctx context.Context, filter ScopeFilter, actorID, moduleID string) error {
	if err := s.curriculum.DeleteModule(ctx, moduleID, filter.ProgramScope()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete module")
	}
	s.recordAudit(ctx, actorID, models.AuditActionModuleDelete, moduleID)
	return nil
}

// ReorderModules reassigns sequence numbers for the modules of one level.
// The batch is validated as a whole before any write: duplicate target
// sequences, unknown modules, or modules from another level reject the
// entire batch. The writes then happen in one transaction, so a reorder is
// all-or-nothing rather than per-item isolated.
func (s *CurriculumService) ReorderModules(ctx context.Context, filter ScopeFilter, actorID, levelID string, req dto.ReorderRequest) ([]models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	if err := s.bulk.ValidateReorderBatch(req.Items); err != nil {
		return nil, err
	}

	if _, err := s.curriculum.FindLevelByID(ctx, levelID, filter.ProgramScope()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "level not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load level")
	}

	modules, err := s.curriculum.ListModules(ctx, levelID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	known := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		known[m.ID] = struct{}{}
	}
	for _, item := range req.Items {
		if _, ok := known[item.ID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "reorder batch references a module outside the level")
		}
	}

	if err := s.curriculum.UpdateModuleSequences(ctx, levelID, req.Items); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "reorder batch references a module outside the level")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply reorder")
	}
	s.recordAudit(ctx, actorID, models.AuditActionCurriculumReorder, levelID)

	reordered, err := s.curriculum.ListModules(ctx, levelID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return reordered, nil
}

// BulkUpdateModuleStatus changes the status of many modules with per-item
// failure isolation: a missing module fails its own item only.
func (s *CurriculumService) BulkUpdateModuleStatus(ctx context.Context, filter ScopeFilter, req dto.BulkStatusRequest) (*dto.BulkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown module status")
	}

	return s.bulk.Run(ctx, "module_status", req.IDs, func(ctx context.Context, id string) error {
		if err := s.curriculum.UpdateModuleStatus(ctx, id, req.Status, filter.ProgramScope()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "not found")
			}
			return err
		}
		return nil
	})
}

func (s *CurriculumService) recordAudit(ctx context.Context, actorID, action, resourceID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "curriculum",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record curriculum audit log", zap.Error(err))
	}
}
