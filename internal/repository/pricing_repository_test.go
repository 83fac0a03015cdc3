package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func pricingRows(entries ...models.PricingEntry) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "facility_id", "course_id", "age_group", "location_type", "session_type", "price", "active", "notes", "created_by", "created_at", "updated_at"})
	now := time.Now()
	for _, e := range entries {
		rows.AddRow(e.ID, e.FacilityID, e.CourseID, e.AgeGroup, string(e.LocationType), e.SessionType, e.Price, e.Active, e.Notes, e.CreatedBy, now, now)
	}
	return rows
}

func TestFindActiveByKey(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPricingRepository(db)

	key := models.PricingKey{
		FacilityID:   "fac-1",
		CourseID:     "course-1",
		AgeGroup:     "kids",
		LocationType: models.LocationOurFacility,
		SessionType:  "private",
	}
	mock.ExpectQuery("SELECT (.+) FROM pricing_entries").
		WithArgs("fac-1", "course-1", "kids", "our-facility", "private").
		WillReturnRows(pricingRows(models.PricingEntry{
			ID: "pe-1", FacilityID: "fac-1", CourseID: "course-1",
			AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
			Price: 250000, Active: true,
		}))

	entry, err := repo.FindActiveByKey(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), entry.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveByKeyMiss(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPricingRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM pricing_entries").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByKey(context.Background(), models.PricingKey{FacilityID: "fac-1"})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveByFacilityScopedJoinsCourses(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPricingRepository(db)

	mock.ExpectQuery("FROM pricing_entries e JOIN courses c ON c.id = e.course_id").
		WithArgs("fac-1", "prog-a").
		WillReturnRows(pricingRows())

	entries, err := repo.ListActiveByFacility(context.Background(), "fac-1", "prog-a")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveByFacilityUnrestricted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPricingRepository(db)

	mock.ExpectQuery("FROM pricing_entries e WHERE e.facility_id").
		WithArgs("fac-1").
		WillReturnRows(pricingRows(models.PricingEntry{ID: "pe-1", FacilityID: "fac-1", Active: true}))

	entries, err := repo.ListActiveByFacility(context.Background(), "fac-1", "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePricingEntryConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPricingRepository(db)

	mock.ExpectExec("INSERT INTO pricing_entries").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.PricingEntry{
		FacilityID: "fac-1", CourseID: "course-1",
		AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 250000, Active: true,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePricingEntryAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPricingRepository(db)

	mock.ExpectExec("INSERT INTO pricing_entries").
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.PricingEntry{
		FacilityID: "fac-1", CourseID: "course-1",
		AgeGroup: "kids", LocationType: models.LocationOurFacility, SessionType: "private",
		Price: 250000, Active: true,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePriceMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPricingRepository(db)

	mock.ExpectExec("UPDATE pricing_entries SET price").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePrice(context.Background(), "pe-missing", 100, "")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateAlreadyInactive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPricingRepository(db)

	mock.ExpectExec("UPDATE pricing_entries SET active = FALSE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "pe-1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
