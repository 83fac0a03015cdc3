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

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id, programID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Cancel(ctx context.Context, id, programID string) error
}

// EnrollmentService registers students into priced course combinations.
// The price is resolved through the pricing service at enrollment time and
// recorded on the row, so later pricing changes never rewrite history.
type EnrollmentService struct {
	enrollments enrollmentRepository
	pricing     *PricingService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(enrollments enrollmentRepository, pricing *PricingService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{enrollments: enrollments, pricing: pricing, validator: validate, logger: logger}
}

// List returns enrollments within the filter's scope with pagination.
func (s *EnrollmentService) List(ctx context.Context, scope ScopeFilter, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	filter.ProgramID = scope.ProgramScope()
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	enrollments, total, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return enrollments, pagination, nil
}

// Get returns one enrollment within the filter's scope.
func (s *EnrollmentService) Get(ctx context.Context, scope ScopeFilter, id string) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(ctx, id, scope.ProgramScope())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// Create enrolls a student. The combination must resolve to an exact active
// pricing entry; a fallback-range-only combination is rejected here, the
// lookup endpoint exposes the range for clients that want to inspect it. An
// invalid coupon never blocks the enrollment.
func (s *EnrollmentService) Create(ctx context.Context, scope ScopeFilter, programID string, req dto.CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if programID == "" {
		return nil, appErrors.ErrMissingContext
	}

	lookup, err := s.pricing.LookupPrice(ctx, scope.ProgramScope(), dto.PriceLookupRequest{
		FacilityID:   req.FacilityID,
		CourseID:     req.CourseID,
		AgeGroup:     req.AgeGroup,
		LocationType: req.LocationType,
		SessionType:  req.SessionType,
	})
	if err != nil {
		return nil, err
	}
	if !lookup.Applicable {
		return nil, appErrors.Clone(appErrors.ErrValidation, lookup.Reason)
	}
	if !lookup.Found {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no active price is configured for this combination")
	}

	basePrice := *lookup.Price
	enrollment := &models.Enrollment{
		StudentID:    req.StudentID,
		ProgramID:    programID,
		CourseID:     req.CourseID,
		FacilityID:   req.FacilityID,
		AgeGroup:     req.AgeGroup,
		LocationType: req.LocationType,
		SessionType:  req.SessionType,
		Price:        basePrice,
		Status:       models.EnrollmentStatusActive,
	}

	if req.CouponCode != "" {
		outcome := s.pricing.ApplyCoupon(ctx, basePrice, req.CouponCode, req.CourseID, req.FacilityID)
		if outcome.Valid {
			code := req.CouponCode
			enrollment.CouponCode = &code
			enrollment.DiscountAmount = outcome.DiscountAmount
			enrollment.Price = outcome.Total
		} else {
			s.logger.Info("coupon ignored at enrollment",
				zap.String("code", req.CouponCode),
				zap.String("reason", outcome.Message))
		}
	}

	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	return enrollment, nil
}

// Cancel marks an active enrollment cancelled within the filter's scope.
func (s *EnrollmentService) Cancel(ctx context.Context, scope ScopeFilter, id string) error {
	if err := s.enrollments.Cancel(ctx, id, scope.ProgramScope()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel enrollment")
	}
	return nil
}
