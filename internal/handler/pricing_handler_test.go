package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/middleware"
	"github.com/noah-isme/academy-admin-api/internal/models"
	"github.com/noah-isme/academy-admin-api/internal/service"
)

type pricingEntriesStub struct {
	entry *models.PricingEntry
}

func (s *pricingEntriesStub) FindActiveByKey(ctx context.Context, key models.PricingKey) (*models.PricingEntry, error) {
	if s.entry != nil && s.entry.Key() == key {
		return s.entry, nil
	}
	return nil, sql.ErrNoRows
}

func (s *pricingEntriesStub) FindByID(ctx context.Context, id string) (*models.PricingEntry, error) {
	return nil, sql.ErrNoRows
}

func (s *pricingEntriesStub) ListActiveByFacility(ctx context.Context, facilityID, programID string) ([]models.PricingEntry, error) {
	if s.entry != nil && s.entry.FacilityID == facilityID {
		return []models.PricingEntry{*s.entry}, nil
	}
	return nil, nil
}

func (s *pricingEntriesStub) Create(ctx context.Context, entry *models.PricingEntry) error {
	return nil
}

func (s *pricingEntriesStub) UpdatePrice(ctx context.Context, id string, price int64, notes string) error {
	return sql.ErrNoRows
}

func (s *pricingEntriesStub) Deactivate(ctx context.Context, id string) error {
	return sql.ErrNoRows
}

type coursesStub struct{}

func (coursesStub) FindByID(ctx context.Context, id, programID string) (*models.Course, error) {
	if id != "course-swim" {
		return nil, sql.ErrNoRows
	}
	return &models.Course{
		ID:        id,
		ProgramID: "prog-a",
		AgeGroups: models.AgeGroupList{{ID: "kids", Label: "Kids"}},
		SessionTypes: models.SessionTypeList{
			{ID: "private", Label: "Private"},
		},
		LocationTypes: models.LocationTypeList{models.LocationOurFacility},
		BasePriceMin:  100000,
		BasePriceMax:  300000,
	}, nil
}

type couponsStub struct{}

func (couponsStub) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return nil, sql.ErrNoRows
}

func newPricingHandlerFixture() *PricingHandler {
	entry := &models.PricingEntry{
		ID: "pe-1", FacilityID: "fac-1", CourseID: "course-swim",
		AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 250000, Active: true,
	}
	pricing := service.NewPricingService(&pricingEntriesStub{entry: entry}, coursesStub{}, couponsStub{}, nil, nil, nil, nil, nil, time.Minute, "Rp")
	return NewPricingHandler(pricing, nil)
}

func testContextWithScope(t *testing.T, method, path string, body interface{}, filter service.ScopeFilter) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("programFilter", filter)
	return w, c
}

func TestLookupHandlerReturnsResolvedPrice(t *testing.T) {
	handler := newPricingHandlerFixture()
	w, c := testContextWithScope(t, http.MethodPost, "/pricing/lookup", dto.PriceLookupRequest{
		FacilityID:   "fac-1",
		CourseID:     "course-swim",
		AgeGroup:     "kids",
		LocationType: models.LocationOurFacility,
		SessionType:  "private",
	}, service.ScopeFilter{ProgramID: "prog-a"})

	handler.Lookup(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.PriceLookupResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Applicable)
	assert.True(t, envelope.Data.Found)
	require.NotNil(t, envelope.Data.Price)
	assert.Equal(t, int64(250000), *envelope.Data.Price)
}

func TestLookupHandlerFallbackRange(t *testing.T) {
	handler := newPricingHandlerFixture()
	w, c := testContextWithScope(t, http.MethodPost, "/pricing/lookup", dto.PriceLookupRequest{
		FacilityID:   "fac-other",
		CourseID:     "course-swim",
		AgeGroup:     "kids",
		LocationType: models.LocationOurFacility,
		SessionType:  "private",
	}, service.ScopeFilter{ProgramID: "prog-a"})

	handler.Lookup(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data dto.PriceLookupResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Applicable)
	assert.False(t, envelope.Data.Found)
	require.NotNil(t, envelope.Data.FallbackRange)
	assert.Equal(t, int64(100000), envelope.Data.FallbackRange.Min)
}

func TestLookupHandlerInvalidBody(t *testing.T) {
	handler := newPricingHandlerFixture()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/pricing/lookup", bytes.NewReader([]byte("{not json")))
	c.Set("programFilter", service.ScopeFilter{ProgramID: "prog-a"})

	handler.Lookup(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerWithoutScopeMiddlewareFailsClosed(t *testing.T) {
	handler := newPricingHandlerFixture()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/pricing/lookup", bytes.NewReader(nil))

	handler.Lookup(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFilterRoundTripThroughMiddlewareKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/courses", nil)
	c.Set("programFilter", service.ScopeFilter{ProgramID: "prog-a"})

	filter, ok := middleware.FilterFromContext(c)
	require.True(t, ok)
	assert.Equal(t, "prog-a", filter.ProgramID)
}
