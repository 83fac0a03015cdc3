package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type pricingRepository interface {
	FindActiveByKey(ctx context.Context, key models.PricingKey) (*models.PricingEntry, error)
	FindByID(ctx context.Context, id string) (*models.PricingEntry, error)
	ListActiveByFacility(ctx context.Context, facilityID, programID string) ([]models.PricingEntry, error)
	Create(ctx context.Context, entry *models.PricingEntry) error
	UpdatePrice(ctx context.Context, id string, price int64, notes string) error
	Deactivate(ctx context.Context, id string) error
}

type pricingCourseRepository interface {
	FindByID(ctx context.Context, id, programID string) (*models.Course, error)
}

type pricingCouponRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type pricingAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// PricingService resolves prices for enrollment combinations and manages
// the pricing entries behind them.
type PricingService struct {
	entries   pricingRepository
	courses   pricingCourseRepository
	coupons   pricingCouponRepository
	audit     pricingAuditRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	matrixTTL time.Duration
	currency  string
}

// NewPricingService constructs the service.
func NewPricingService(
	entries pricingRepository,
	courses pricingCourseRepository,
	coupons pricingCouponRepository,
	audit pricingAuditRepository,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	matrixTTL time.Duration,
	currency string,
) *PricingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if matrixTTL <= 0 {
		matrixTTL = 10 * time.Minute
	}
	if currency == "" {
		currency = "Rp"
	}
	return &PricingService{
		entries:   entries,
		courses:   courses,
		coupons:   coupons,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		matrixTTL: matrixTTL,
		currency:  currency,
	}
}

// LookupPrice resolves the price for one combination. Axis values outside
// the course configuration produce an inapplicable result, not an error.
// When no exact active entry exists the course base range is returned so
// the caller can decide how to proceed.
func (s *PricingService) LookupPrice(ctx context.Context, programID string, req dto.PriceLookupRequest) (*dto.PriceLookupResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid price lookup payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if reason, ok := validateAxes(course, req.AgeGroup, req.LocationType, req.SessionType); !ok {
		s.metrics.RecordPriceLookup("not_applicable")
		return &dto.PriceLookupResult{Applicable: false, Reason: reason}, nil
	}

	result := &dto.PriceLookupResult{Applicable: true}
	key := models.PricingKey{
		FacilityID:   req.FacilityID,
		CourseID:     req.CourseID,
		AgeGroup:     req.AgeGroup,
		LocationType: req.LocationType,
		SessionType:  req.SessionType,
	}

	entry, err := s.entries.FindActiveByKey(ctx, key)
	switch {
	case err == nil:
		result.Found = true
		price := entry.Price
		result.Price = &price
		result.FormattedPrice = s.FormatPrice(price)
		s.metrics.RecordPriceLookup("found")
	case errors.Is(err, sql.ErrNoRows):
		result.Found = false
		result.FallbackRange = &dto.PriceRange{Min: course.BasePriceMin, Max: course.BasePriceMax}
		s.metrics.RecordPriceLookup("fallback")
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve price")
	}

	if result.Found && req.CouponCode != "" {
		outcome := s.ApplyCoupon(ctx, *result.Price, req.CouponCode, req.CourseID, req.FacilityID)
		result.Coupon = &outcome
	}

	return result, nil
}

// ApplyCoupon computes the discounted total for a base price. An absent,
// unknown, expired, or out-of-scope coupon degrades to the full price with
// valid=false; it never blocks the transaction. The discount is clamped to
// [0, basePrice] so the total can never go negative.
func (s *PricingService) ApplyCoupon(ctx context.Context, basePrice int64, code, courseID, facilityID string) dto.CouponOutcome {
	outcome := dto.CouponOutcome{Total: basePrice, DiscountAmount: 0, Valid: false}
	if code == "" {
		return outcome
	}

	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("coupon lookup failed", zap.String("code", code), zap.Error(err))
		}
		outcome.Message = "coupon code not recognized"
		return outcome
	}

	switch {
	case !coupon.Active:
		outcome.Message = "coupon is no longer active"
		return outcome
	case coupon.ExpiresAt != nil && time.Now().UTC().After(*coupon.ExpiresAt):
		outcome.Message = "coupon has expired"
		return outcome
	case coupon.CourseID != nil && *coupon.CourseID != courseID:
		outcome.Message = "coupon does not apply to this course"
		return outcome
	case coupon.FacilityID != nil && *coupon.FacilityID != facilityID:
		outcome.Message = "coupon does not apply to this facility"
		return outcome
	}

	var discount int64
	switch coupon.DiscountType {
	case models.CouponDiscountFlat:
		discount = coupon.DiscountValue
	case models.CouponDiscountPercent:
		discount = int64(math.Round(float64(basePrice) * float64(coupon.DiscountValue) / 100))
	default:
		outcome.Message = "coupon has an unknown discount type"
		return outcome
	}

	if discount < 0 {
		discount = 0
	}
	if discount > basePrice {
		discount = basePrice
	}

	outcome.DiscountAmount = discount
	outcome.Total = basePrice - discount
	outcome.Valid = true
	return outcome
}

// GetMatrix returns the facility's active entries grouped by course, cached
// per facility and program scope.
func (s *PricingService) GetMatrix(ctx context.Context, facilityID, programID string) (*dto.PricingMatrix, error) {
	cacheKey := fmt.Sprintf("pricing:matrix:%s:%s", facilityID, programID)
	var cached dto.PricingMatrix
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	entries, err := s.entries.ListActiveByFacility(ctx, facilityID, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pricing entries")
	}

	matrix := &dto.PricingMatrix{
		FacilityID:  facilityID,
		Courses:     make(map[string][]dto.MatrixEntry),
		GeneratedAt: time.Now().UTC(),
	}
	for _, e := range entries {
		matrix.Courses[e.CourseID] = append(matrix.Courses[e.CourseID], dto.MatrixEntry{
			EntryID:        e.ID,
			AgeGroup:       e.AgeGroup,
			LocationType:   e.LocationType,
			SessionType:    e.SessionType,
			Price:          e.Price,
			FormattedPrice: s.FormatPrice(e.Price),
		})
	}

	if err := s.cache.Set(ctx, cacheKey, matrix, s.matrixTTL); err != nil {
		s.logger.Warn("failed to cache pricing matrix", zap.Error(err))
	}
	return matrix, nil
}

// CreateEntry creates a new active pricing entry after validating the axes
// against the course configuration. A duplicate active tuple surfaces as a
// conflict from the storage layer.
func (s *PricingService) CreateEntry(ctx context.Context, programID, actorID string, req dto.CreatePricingEntryRequest) (*models.PricingEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pricing entry payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if reason, ok := validateAxes(course, req.AgeGroup, req.LocationType, req.SessionType); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, reason)
	}

	entry := &models.PricingEntry{
		FacilityID:   req.FacilityID,
		CourseID:     req.CourseID,
		AgeGroup:     req.AgeGroup,
		LocationType: req.LocationType,
		SessionType:  req.SessionType,
		Price:        req.Price,
		Active:       true,
		Notes:        req.Notes,
		CreatedBy:    actorID,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create pricing entry")
	}

	s.invalidateMatrix(ctx, req.FacilityID)
	s.recordPricingAudit(ctx, actorID, models.AuditActionPricingWrite, entry.ID)
	return entry, nil
}

// UpdateEntry changes the price or notes of an existing entry.
func (s *PricingService) UpdateEntry(ctx context.Context, actorID, entryID string, req dto.UpdatePricingEntryRequest) (*models.PricingEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pricing update payload")
	}

	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pricing entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pricing entry")
	}

	price := entry.Price
	if req.Price != nil {
		price = *req.Price
	}
	notes := entry.Notes
	if req.Notes != nil {
		notes = *req.Notes
	}
	if err := s.entries.UpdatePrice(ctx, entryID, price, notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pricing entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update pricing entry")
	}

	entry.Price = price
	entry.Notes = notes
	s.invalidateMatrix(ctx, entry.FacilityID)
	s.recordPricingAudit(ctx, actorID, models.AuditActionPricingWrite, entry.ID)
	return entry, nil
}

// DeactivateEntry retires an entry so a replacement can be created for the
// same tuple.
func (s *PricingService) DeactivateEntry(ctx context.Context, actorID, entryID string) error {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "pricing entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pricing entry")
	}
	if err := s.entries.Deactivate(ctx, entryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "pricing entry is not active")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate pricing entry")
	}
	s.invalidateMatrix(ctx, entry.FacilityID)
	s.recordPricingAudit(ctx, actorID, models.AuditActionPricingWrite, entryID)
	return nil
}

// ImportFromFacility copies every active entry from the source facility to
// the target, adjusting each price by a flat amount floored at zero. With
// overwrite off, tuples already priced at the target are skipped and
// reported as skips, not failures. Item failures never abort the run.
func (s *PricingService) ImportFromFacility(ctx context.Context, programID, actorID string, req dto.ImportPricingRequest) (*dto.ImportPricingSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import payload")
	}
	if req.SourceFacilityID == req.TargetFacilityID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source and target facility must differ")
	}

	sourceEntries, err := s.entries.ListActiveByFacility(ctx, req.SourceFacilityID, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load source pricing entries")
	}

	summary := &dto.ImportPricingSummary{}
	for _, src := range sourceEntries {
		targetKey := src.Key()
		targetKey.FacilityID = req.TargetFacilityID

		existing, err := s.entries.FindActiveByKey(ctx, targetKey)
		switch {
		case err == nil:
			if !req.Overwrite {
				summary.Skipped++
				summary.SkippedTuples = append(summary.SkippedTuples, targetKey)
				continue
			}
			if err := s.entries.Deactivate(ctx, existing.ID); err != nil {
				summary.Failed++
				summary.Failures = append(summary.Failures, dto.BulkFailure{ID: src.ID, Error: "failed to replace existing entry", Unexpected: true})
				continue
			}
		case errors.Is(err, sql.ErrNoRows):
			// nothing priced at the target yet
		default:
			summary.Failed++
			summary.Failures = append(summary.Failures, dto.BulkFailure{ID: src.ID, Error: "failed to check target entry", Unexpected: true})
			continue
		}

		price := src.Price + req.Adjustment
		if price < 0 {
			price = 0
		}
		copied := &models.PricingEntry{
			FacilityID:   req.TargetFacilityID,
			CourseID:     src.CourseID,
			AgeGroup:     src.AgeGroup,
			LocationType: src.LocationType,
			SessionType:  src.SessionType,
			Price:        price,
			Active:       true,
			Notes:        src.Notes,
			CreatedBy:    actorID,
		}
		if err := s.entries.Create(ctx, copied); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, dto.BulkFailure{ID: src.ID, Error: err.Error(), Unexpected: !appErrors.IsRecoverable(err)})
			continue
		}
		summary.Copied++
	}

	s.invalidateMatrix(ctx, req.TargetFacilityID)
	s.recordPricingAudit(ctx, actorID, models.AuditActionPricingImport, req.TargetFacilityID)
	s.logger.Info("pricing import completed",
		zap.String("source", req.SourceFacilityID),
		zap.String("target", req.TargetFacilityID),
		zap.Int("copied", summary.Copied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// FormatPrice renders a minor-unit amount with the configured currency
// symbol and thousand separators.
func (s *PricingService) FormatPrice(amount int64) string {
	value := amount
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	digits := fmt.Sprintf("%d", value)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	return fmt.Sprintf("%s%s%s", sign, s.currency, string(out))
}

func (s *PricingService) invalidateMatrix(ctx context.Context, facilityID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("pricing:matrix:%s:*", facilityID)); err != nil {
		s.logger.Warn("failed to invalidate pricing matrix cache", zap.String("facility_id", facilityID), zap.Error(err))
	}
}

func (s *PricingService) recordPricingAudit(ctx context.Context, actorID, action, resourceID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "pricing",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record pricing audit log", zap.Error(err))
	}
}

// validateAxes checks the requested combination against the course's
// configured classification axes.
func validateAxes(course *models.Course, ageGroup string, locationType models.LocationType, sessionType string) (string, bool) {
	if _, ok := course.AgeGroups.ByID(ageGroup); !ok {
		return fmt.Sprintf("age group %q is not configured for this course", ageGroup), false
	}
	if !course.LocationTypes.Contains(locationType) {
		return fmt.Sprintf("location type %q is not supported by this course", locationType), false
	}
	if _, ok := course.SessionTypes.ByID(sessionType); !ok {
		return fmt.Sprintf("session type %q is not configured for this course", sessionType), false
	}
	return "", true
}
