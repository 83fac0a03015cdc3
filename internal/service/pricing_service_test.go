package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

type pricingRepoStub struct {
	entries map[models.PricingKey]models.PricingEntry
	created []models.PricingEntry
	err     error
	nextID  int
}

func (s *pricingRepoStub) FindActiveByKey(ctx context.Context, key models.PricingKey) (*models.PricingEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	if e, ok := s.entries[key]; ok && e.Active {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (s *pricingRepoStub) FindByID(ctx context.Context, id string) (*models.PricingEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, e := range s.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *pricingRepoStub) ListActiveByFacility(ctx context.Context, facilityID, programID string) ([]models.PricingEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.PricingEntry
	for _, e := range s.entries {
		if e.FacilityID == facilityID && e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *pricingRepoStub) Create(ctx context.Context, entry *models.PricingEntry) error {
	if s.err != nil {
		return s.err
	}
	if existing, ok := s.entries[entry.Key()]; ok && existing.Active {
		return appErrors.Clone(appErrors.ErrConflict, "an active price already exists for this combination")
	}
	s.nextID++
	entry.ID = fmt.Sprintf("pe-new-%d", s.nextID)
	if s.entries == nil {
		s.entries = make(map[models.PricingKey]models.PricingEntry)
	}
	s.entries[entry.Key()] = *entry
	s.created = append(s.created, *entry)
	return nil
}

func (s *pricingRepoStub) UpdatePrice(ctx context.Context, id string, price int64, notes string) error {
	for key, e := range s.entries {
		if e.ID == id {
			e.Price = price
			e.Notes = notes
			s.entries[key] = e
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *pricingRepoStub) Deactivate(ctx context.Context, id string) error {
	for key, e := range s.entries {
		if e.ID == id && e.Active {
			e.Active = false
			s.entries[key] = e
			return nil
		}
	}
	return sql.ErrNoRows
}

type courseRepoStub struct {
	courses map[string]models.Course
}

func (s *courseRepoStub) FindByID(ctx context.Context, id, programID string) (*models.Course, error) {
	course, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if programID != "" && course.ProgramID != programID {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

type couponRepoStub struct {
	coupons map[string]models.Coupon
}

func (s *couponRepoStub) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if c, ok := s.coupons[code]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type auditLoggerStub struct {
	logs []*models.AuditLog
}

func (a *auditLoggerStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func swimCourse() models.Course {
	return models.Course{
		ID:        "course-swim",
		ProgramID: "prog-a",
		Name:      "Learn to Swim",
		AgeGroups: models.AgeGroupList{
			{ID: "kids", Label: "Kids", MinAge: 5, MaxAge: 12},
			{ID: "teens", Label: "Teens", MinAge: 13, MaxAge: 17},
		},
		SessionTypes: models.SessionTypeList{
			{ID: "private", Label: "Private"},
			{ID: "group", Label: "Group", MaxParticipants: 8},
		},
		LocationTypes: models.LocationTypeList{models.LocationOurFacility, models.LocationVirtual},
		BasePriceMin:  150000,
		BasePriceMax:  400000,
		Active:        true,
	}
}

func newPricingService(entries *pricingRepoStub, coupons *couponRepoStub) *PricingService {
	courses := &courseRepoStub{courses: map[string]models.Course{"course-swim": swimCourse()}}
	if coupons == nil {
		coupons = &couponRepoStub{}
	}
	return NewPricingService(entries, courses, coupons, &auditLoggerStub{}, nil, nil, nil, nil, time.Minute, "Rp")
}

func lookupRequest() dto.PriceLookupRequest {
	return dto.PriceLookupRequest{
		FacilityID:   "fac-1",
		CourseID:     "course-swim",
		AgeGroup:     "kids",
		LocationType: models.LocationOurFacility,
		SessionType:  "private",
	}
}

func TestLookupPriceExactMatch(t *testing.T) {
	entries := &pricingRepoStub{entries: map[models.PricingKey]models.PricingEntry{}}
	entry := models.PricingEntry{
		ID: "pe-1", FacilityID: "fac-1", CourseID: "course-swim",
		AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 250000, Active: true,
	}
	entries.entries[entry.Key()] = entry
	service := newPricingService(entries, nil)

	result, err := service.LookupPrice(context.Background(), "prog-a", lookupRequest())
	require.NoError(t, err)
	assert.True(t, result.Applicable)
	assert.True(t, result.Found)
	require.NotNil(t, result.Price)
	assert.Equal(t, int64(250000), *result.Price)
	assert.Equal(t, "Rp250.000", result.FormattedPrice)
	assert.Nil(t, result.FallbackRange)
}

func TestLookupPriceFallsBackToBaseRange(t *testing.T) {
	service := newPricingService(&pricingRepoStub{}, nil)

	result, err := service.LookupPrice(context.Background(), "prog-a", lookupRequest())
	require.NoError(t, err)
	assert.True(t, result.Applicable)
	assert.False(t, result.Found)
	assert.Nil(t, result.Price)
	require.NotNil(t, result.FallbackRange)
	assert.Equal(t, int64(150000), result.FallbackRange.Min)
	assert.Equal(t, int64(400000), result.FallbackRange.Max)
}

func TestLookupPriceUnconfiguredAxisIsNotApplicable(t *testing.T) {
	service := newPricingService(&pricingRepoStub{}, nil)

	req := lookupRequest()
	req.AgeGroup = "adults"
	result, err := service.LookupPrice(context.Background(), "prog-a", req)
	require.NoError(t, err)
	assert.False(t, result.Applicable)
	assert.NotEmpty(t, result.Reason)
	assert.False(t, result.Found)
	assert.Nil(t, result.FallbackRange)
}

func TestLookupPriceUnsupportedLocationIsNotApplicable(t *testing.T) {
	service := newPricingService(&pricingRepoStub{}, nil)

	req := lookupRequest()
	req.LocationType = models.LocationClientLocation
	result, err := service.LookupPrice(context.Background(), "prog-a", req)
	require.NoError(t, err)
	assert.False(t, result.Applicable)
}

func TestLookupPriceCourseOutsideScopeIsNotFound(t *testing.T) {
	service := newPricingService(&pricingRepoStub{}, nil)

	_, err := service.LookupPrice(context.Background(), "prog-other", lookupRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplyCouponPercentDiscount(t *testing.T) {
	coupons := &couponRepoStub{coupons: map[string]models.Coupon{
		"SAVE10": {Code: "SAVE10", DiscountType: models.CouponDiscountPercent, DiscountValue: 10, Active: true},
	}}
	service := newPricingService(&pricingRepoStub{}, coupons)

	outcome := service.ApplyCoupon(context.Background(), 250000, "SAVE10", "course-swim", "fac-1")
	assert.True(t, outcome.Valid)
	assert.Equal(t, int64(25000), outcome.DiscountAmount)
	assert.Equal(t, int64(225000), outcome.Total)
}

func TestApplyCouponFlatDiscountClampedToBase(t *testing.T) {
	coupons := &couponRepoStub{coupons: map[string]models.Coupon{
		"BIG": {Code: "BIG", DiscountType: models.CouponDiscountFlat, DiscountValue: 999999, Active: true},
	}}
	service := newPricingService(&pricingRepoStub{}, coupons)

	outcome := service.ApplyCoupon(context.Background(), 100000, "BIG", "course-swim", "fac-1")
	assert.True(t, outcome.Valid)
	assert.Equal(t, int64(100000), outcome.DiscountAmount)
	assert.Equal(t, int64(0), outcome.Total)
}

func TestApplyCouponUnknownCodeNeverBlocks(t *testing.T) {
	service := newPricingService(&pricingRepoStub{}, nil)

	outcome := service.ApplyCoupon(context.Background(), 100000, "NOPE", "course-swim", "fac-1")
	assert.False(t, outcome.Valid)
	assert.Equal(t, int64(100000), outcome.Total)
	assert.Equal(t, int64(0), outcome.DiscountAmount)
	assert.NotEmpty(t, outcome.Message)
}

func TestApplyCouponExpired(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	coupons := &couponRepoStub{coupons: map[string]models.Coupon{
		"OLD": {Code: "OLD", DiscountType: models.CouponDiscountFlat, DiscountValue: 1000, Active: true, ExpiresAt: &past},
	}}
	service := newPricingService(&pricingRepoStub{}, coupons)

	outcome := service.ApplyCoupon(context.Background(), 100000, "OLD", "course-swim", "fac-1")
	assert.False(t, outcome.Valid)
	assert.Equal(t, int64(100000), outcome.Total)
}

func TestApplyCouponScopedToOtherCourse(t *testing.T) {
	other := "course-other"
	coupons := &couponRepoStub{coupons: map[string]models.Coupon{
		"SCOPED": {Code: "SCOPED", DiscountType: models.CouponDiscountFlat, DiscountValue: 1000, Active: true, CourseID: &other},
	}}
	service := newPricingService(&pricingRepoStub{}, coupons)

	outcome := service.ApplyCoupon(context.Background(), 100000, "SCOPED", "course-swim", "fac-1")
	assert.False(t, outcome.Valid)
	assert.Equal(t, int64(100000), outcome.Total)
}

func TestCreateEntryDuplicateActiveTupleConflicts(t *testing.T) {
	entries := &pricingRepoStub{entries: map[models.PricingKey]models.PricingEntry{}}
	service := newPricingService(entries, nil)

	req := dto.CreatePricingEntryRequest{
		FacilityID: "fac-1", CourseID: "course-swim",
		AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 250000,
	}
	_, err := service.CreateEntry(context.Background(), "prog-a", "admin", req)
	require.NoError(t, err)

	_, err = service.CreateEntry(context.Background(), "prog-a", "admin", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCreateEntryRejectsUnconfiguredAxis(t *testing.T) {
	service := newPricingService(&pricingRepoStub{}, nil)

	req := dto.CreatePricingEntryRequest{
		FacilityID: "fac-1", CourseID: "course-swim",
		AgeGroup: "seniors", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 250000,
	}
	_, err := service.CreateEntry(context.Background(), "prog-a", "admin", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestImportSkipsExistingWithoutOverwrite(t *testing.T) {
	entries := &pricingRepoStub{entries: map[models.PricingKey]models.PricingEntry{}}
	src := models.PricingEntry{
		ID: "pe-src", FacilityID: "fac-1", CourseID: "course-swim",
		AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 250000, Active: true,
	}
	existing := src
	existing.ID = "pe-target"
	existing.FacilityID = "fac-2"
	existing.Price = 300000
	entries.entries[src.Key()] = src
	entries.entries[existing.Key()] = existing
	service := newPricingService(entries, nil)

	summary, err := service.ImportFromFacility(context.Background(), "prog-a", "admin", dto.ImportPricingRequest{
		SourceFacilityID: "fac-1",
		TargetFacilityID: "fac-2",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Copied)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	// The target keeps its own price.
	kept, err := entries.FindActiveByKey(context.Background(), existing.Key())
	require.NoError(t, err)
	assert.Equal(t, int64(300000), kept.Price)
}

func TestImportOverwriteReplacesExisting(t *testing.T) {
	entries := &pricingRepoStub{entries: map[models.PricingKey]models.PricingEntry{}}
	src := models.PricingEntry{
		ID: "pe-src", FacilityID: "fac-1", CourseID: "course-swim",
		AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 250000, Active: true,
	}
	existing := src
	existing.ID = "pe-target"
	existing.FacilityID = "fac-2"
	existing.Price = 300000
	entries.entries[src.Key()] = src
	entries.entries[existing.Key()] = existing
	service := newPricingService(entries, nil)

	summary, err := service.ImportFromFacility(context.Background(), "prog-a", "admin", dto.ImportPricingRequest{
		SourceFacilityID: "fac-1",
		TargetFacilityID: "fac-2",
		Overwrite:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Copied)
	assert.Equal(t, 0, summary.Skipped)
	replaced, err := entries.FindActiveByKey(context.Background(), existing.Key())
	require.NoError(t, err)
	assert.Equal(t, int64(250000), replaced.Price)
}

func TestImportAdjustmentFloorsAtZero(t *testing.T) {
	entries := &pricingRepoStub{entries: map[models.PricingKey]models.PricingEntry{}}
	src := models.PricingEntry{
		ID: "pe-src", FacilityID: "fac-1", CourseID: "course-swim",
		AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 50000, Active: true,
	}
	entries.entries[src.Key()] = src
	service := newPricingService(entries, nil)

	summary, err := service.ImportFromFacility(context.Background(), "prog-a", "admin", dto.ImportPricingRequest{
		SourceFacilityID: "fac-1",
		TargetFacilityID: "fac-2",
		Adjustment:       -80000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Copied)
	require.Len(t, entries.created, 1)
	assert.Equal(t, int64(0), entries.created[0].Price)
}

func TestImportSameFacilityRejected(t *testing.T) {
	service := newPricingService(&pricingRepoStub{}, nil)
	_, err := service.ImportFromFacility(context.Background(), "prog-a", "admin", dto.ImportPricingRequest{
		SourceFacilityID: "fac-1",
		TargetFacilityID: "fac-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFormatPriceGroupsThousands(t *testing.T) {
	service := newPricingService(&pricingRepoStub{}, nil)
	assert.Equal(t, "Rp1.250.000", service.FormatPrice(1250000))
	assert.Equal(t, "Rp0", service.FormatPrice(0))
	assert.Equal(t, "Rp999", service.FormatPrice(999))
	assert.Equal(t, "-Rp1.000", service.FormatPrice(-1000))
}
