package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// FacilityRepository handles persistence of facilities.
type FacilityRepository struct {
	db *sqlx.DB
}

// NewFacilityRepository constructs the repository.
func NewFacilityRepository(db *sqlx.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

// List returns facilities, optionally active ones only.
func (r *FacilityRepository) List(ctx context.Context, activeOnly bool) ([]models.Facility, error) {
	query := `SELECT id, name, address, city, active, created_at, updated_at FROM facilities`
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name"

	var facilities []models.Facility
	if err := r.db.SelectContext(ctx, &facilities, query); err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	return facilities, nil
}

// FindByID returns a facility by identifier.
func (r *FacilityRepository) FindByID(ctx context.Context, id string) (*models.Facility, error) {
	const query = `SELECT id, name, address, city, active, created_at, updated_at FROM facilities WHERE id = $1`
	var facility models.Facility
	if err := r.db.GetContext(ctx, &facility, query, id); err != nil {
		return nil, err
	}
	return &facility, nil
}

// Create persists a new facility.
func (r *FacilityRepository) Create(ctx context.Context, facility *models.Facility) error {
	if facility.ID == "" {
		facility.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if facility.CreatedAt.IsZero() {
		facility.CreatedAt = now
	}
	facility.UpdatedAt = now
	const query = `INSERT INTO facilities (id, name, address, city, active, created_at, updated_at)
        VALUES (:id, :name, :address, :city, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, facility); err != nil {
		return fmt.Errorf("create facility: %w", err)
	}
	return nil
}

// Update updates mutable fields of a facility.
func (r *FacilityRepository) Update(ctx context.Context, facility *models.Facility) error {
	facility.UpdatedAt = time.Now().UTC()
	const query = `UPDATE facilities SET name = :name, address = :address, city = :city, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, facility); err != nil {
		return fmt.Errorf("update facility: %w", err)
	}
	return nil
}
