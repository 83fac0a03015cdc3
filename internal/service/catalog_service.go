package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type facilityRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Facility, error)
	FindByID(ctx context.Context, id string) (*models.Facility, error)
	Create(ctx context.Context, facility *models.Facility) error
	Update(ctx context.Context, facility *models.Facility) error
}

type courseRepository interface {
	List(ctx context.Context, programID string, activeOnly bool) ([]models.Course, error)
	FindByID(ctx context.Context, id, programID string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
}

// CatalogService manages facilities and courses. Facilities are shared
// infrastructure; courses belong to a program and carry the classification
// axes that pricing and enrollment validate against.
type CatalogService struct {
	facilities facilityRepository
	courses    courseRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(facilities facilityRepository, courses courseRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CatalogService{facilities: facilities, courses: courses, validator: validate, logger: logger}
}

// ListFacilities returns facilities.
func (s *CatalogService) ListFacilities(ctx context.Context, activeOnly bool) ([]models.Facility, error) {
	facilities, err := s.facilities.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list facilities")
	}
	return facilities, nil
}

// GetFacility returns one facility.
func (s *CatalogService) GetFacility(ctx context.Context, id string) (*models.Facility, error) {
	facility, err := s.facilities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "facility not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load facility")
	}
	return facility, nil
}

// CreateFacility registers a new facility.
func (s *CatalogService) CreateFacility(ctx context.Context, req dto.CreateFacilityRequest) (*models.Facility, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid facility payload")
	}
	facility := &models.Facility{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Active:  true,
	}
	if err := s.facilities.Create(ctx, facility); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create facility")
	}
	return facility, nil
}

// ListCourses returns the courses visible under the given filter.
func (s *CatalogService) ListCourses(ctx context.Context, filter ScopeFilter, activeOnly bool) ([]models.Course, error) {
	courses, err := s.courses.List(ctx, filter.ProgramScope(), activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// GetCourse returns one course within the filter's scope. A course outside
// the scope reads as not found.
func (s *CatalogService) GetCourse(ctx context.Context, filter ScopeFilter, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id, filter.ProgramScope())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// CreateCourse creates a course under the current program. The axis sets
// are validated for shape here; each record is small and closed so reads
// never re-validate.
func (s *CatalogService) CreateCourse(ctx context.Context, programID string, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if programID == "" {
		return nil, appErrors.ErrMissingContext
	}
	if err := validateCourseAxes(req.AgeGroups, req.SessionTypes, req.LocationTypes); err != nil {
		return nil, err
	}
	if req.BasePriceMax < req.BasePriceMin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "base price max must be at least base price min")
	}

	course := &models.Course{
		ProgramID:     programID,
		Name:          req.Name,
		Description:   req.Description,
		AgeGroups:     req.AgeGroups,
		SessionTypes:  req.SessionTypes,
		LocationTypes: req.LocationTypes,
		BasePriceMin:  req.BasePriceMin,
		BasePriceMax:  req.BasePriceMax,
		Active:        true,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// UpdateCourse changes mutable fields of a course within the filter's scope.
func (s *CatalogService) UpdateCourse(ctx context.Context, filter ScopeFilter, id string, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.GetCourse(ctx, filter, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.AgeGroups != nil {
		course.AgeGroups = *req.AgeGroups
	}
	if req.SessionTypes != nil {
		course.SessionTypes = *req.SessionTypes
	}
	if req.LocationTypes != nil {
		course.LocationTypes = *req.LocationTypes
	}
	if req.BasePriceMin != nil {
		course.BasePriceMin = *req.BasePriceMin
	}
	if req.BasePriceMax != nil {
		course.BasePriceMax = *req.BasePriceMax
	}
	if req.Active != nil {
		course.Active = *req.Active
	}

	if err := validateCourseAxes(course.AgeGroups, course.SessionTypes, course.LocationTypes); err != nil {
		return nil, err
	}
	if course.BasePriceMax < course.BasePriceMin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "base price max must be at least base price min")
	}

	if err := s.courses.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// validateCourseAxes checks the axis records for uniqueness and well-formed
// bounds at write time.
func validateCourseAxes(ageGroups models.AgeGroupList, sessionTypes models.SessionTypeList, locationTypes models.LocationTypeList) error {
	seenAges := make(map[string]struct{}, len(ageGroups))
	for _, g := range ageGroups {
		if g.ID == "" || g.Label == "" {
			return appErrors.Clone(appErrors.ErrValidation, "age group requires an id and label")
		}
		if g.MinAge < 0 || g.MaxAge < g.MinAge {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("age group %q has invalid bounds", g.ID))
		}
		if _, dup := seenAges[g.ID]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("age group %q is duplicated", g.ID))
		}
		seenAges[g.ID] = struct{}{}
	}

	seenSessions := make(map[string]struct{}, len(sessionTypes))
	for _, t := range sessionTypes {
		if t.ID == "" || t.Label == "" {
			return appErrors.Clone(appErrors.ErrValidation, "session type requires an id and label")
		}
		if t.MaxParticipants < 0 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session type %q has invalid capacity", t.ID))
		}
		if _, dup := seenSessions[t.ID]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session type %q is duplicated", t.ID))
		}
		seenSessions[t.ID] = struct{}{}
	}

	seenLocations := make(map[models.LocationType]struct{}, len(locationTypes))
	for _, t := range locationTypes {
		if !t.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("location type %q is not recognized", t))
		}
		if _, dup := seenLocations[t]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("location type %q is duplicated", t))
		}
		seenLocations[t] = struct{}{}
	}
	return nil
}
