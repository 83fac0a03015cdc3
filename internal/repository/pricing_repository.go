package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academy-admin-api/internal/models"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
)

// PricingRepository handles persistence of pricing entries. The table
// carries a partial unique index over active rows per pricing key, so at
// most one active price exists for any combination.
type PricingRepository struct {
	db *sqlx.DB
}

// NewPricingRepository constructs the repository.
func NewPricingRepository(db *sqlx.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

const pricingColumns = `id, facility_id, course_id, age_group, location_type, session_type, price, active, notes, created_by, created_at, updated_at`

// FindActiveByKey returns the single active entry for a pricing key.
func (r *PricingRepository) FindActiveByKey(ctx context.Context, key models.PricingKey) (*models.PricingEntry, error) {
	const query = `SELECT ` + pricingColumns + ` FROM pricing_entries
        WHERE facility_id = $1 AND course_id = $2 AND age_group = $3 AND location_type = $4 AND session_type = $5 AND active = TRUE
        LIMIT 1`
	var entry models.PricingEntry
	if err := r.db.GetContext(ctx, &entry, query, key.FacilityID, key.CourseID, key.AgeGroup, key.LocationType, key.SessionType); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindByID returns an entry by identifier.
func (r *PricingRepository) FindByID(ctx context.Context, id string) (*models.PricingEntry, error) {
	const query = `SELECT ` + pricingColumns + ` FROM pricing_entries WHERE id = $1`
	var entry models.PricingEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListActiveByFacility returns all active entries for a facility. When
// programID is non-empty the result is restricted to entries whose course
// belongs to the program.
func (r *PricingRepository) ListActiveByFacility(ctx context.Context, facilityID, programID string) ([]models.PricingEntry, error) {
	query := `SELECT e.id, e.facility_id, e.course_id, e.age_group, e.location_type, e.session_type, e.price, e.active, e.notes, e.created_by, e.created_at, e.updated_at
        FROM pricing_entries e`
	args := []interface{}{facilityID}
	if programID != "" {
		args = append(args, programID)
		query += ` JOIN courses c ON c.id = e.course_id
        WHERE e.facility_id = $1 AND e.active = TRUE AND c.program_id = $2`
	} else {
		query += ` WHERE e.facility_id = $1 AND e.active = TRUE`
	}
	query += " ORDER BY e.course_id, e.age_group, e.location_type, e.session_type"

	var entries []models.PricingEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list pricing entries: %w", err)
	}
	return entries, nil
}

// Create persists a new entry. A second active entry for the same key
// violates the partial unique index and surfaces as a conflict.
func (r *PricingRepository) Create(ctx context.Context, entry *models.PricingEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	const query = `INSERT INTO pricing_entries (id, facility_id, course_id, age_group, location_type, session_type, price, active, notes, created_by, created_at, updated_at)
        VALUES (:id, :facility_id, :course_id, :age_group, :location_type, :session_type, :price, :active, :notes, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "an active price already exists for this combination")
		}
		return fmt.Errorf("create pricing entry: %w", err)
	}
	return nil
}

// UpdatePrice changes the price and notes of an entry.
func (r *PricingRepository) UpdatePrice(ctx context.Context, id string, price int64, notes string) error {
	const query = `UPDATE pricing_entries SET price = $2, notes = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, price, notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update pricing entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pricing entry: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate retires an entry. Entries are never deleted so enrollments
// keep a valid price reference.
func (r *PricingRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE pricing_entries SET active = FALSE, updated_at = $2 WHERE id = $1 AND active = TRUE`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate pricing entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate pricing entry: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
