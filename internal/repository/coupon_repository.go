package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// CouponRepository handles persistence of coupons.
type CouponRepository struct {
	db *sqlx.DB
}

// NewCouponRepository constructs the repository.
func NewCouponRepository(db *sqlx.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

const couponColumns = `id, code, discount_type, discount_value, active, expires_at, course_id, facility_id, created_at, updated_at`

// FindByCode returns a coupon by code regardless of validity. The pricing
// resolver decides whether the coupon applies; an expired or inactive
// coupon is not an error at this layer.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	const query = `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 LIMIT 1`
	var coupon models.Coupon
	if err := r.db.GetContext(ctx, &coupon, query, code); err != nil {
		return nil, err
	}
	return &coupon, nil
}

// List returns all coupons.
func (r *CouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	const query = `SELECT ` + couponColumns + ` FROM coupons ORDER BY code`
	var coupons []models.Coupon
	if err := r.db.SelectContext(ctx, &coupons, query); err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

// Create persists a new coupon.
func (r *CouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = now
	}
	coupon.UpdatedAt = now
	const query = `INSERT INTO coupons (id, code, discount_type, discount_value, active, expires_at, course_id, facility_id, created_at, updated_at)
        VALUES (:id, :code, :discount_type, :discount_value, :active, :expires_at, :course_id, :facility_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, coupon); err != nil {
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

// SetActive toggles a coupon on or off.
func (r *CouponRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE coupons SET active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set coupon active: %w", err)
	}
	return nil
}
