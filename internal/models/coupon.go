package models

import "time"

// CouponDiscountType distinguishes flat from percentage discounts.
type CouponDiscountType string

const (
	CouponDiscountFlat    CouponDiscountType = "FLAT"
	CouponDiscountPercent CouponDiscountType = "PERCENT"
)

// Coupon maps a code to a discount with validity constraints. Scope fields
// restrict a coupon to one course or facility when set.
type Coupon struct {
	ID            string             `db:"id" json:"id"`
	Code          string             `db:"code" json:"code"`
	DiscountType  CouponDiscountType `db:"discount_type" json:"discount_type"`
	DiscountValue int64              `db:"discount_value" json:"discount_value"`
	Active        bool               `db:"active" json:"active"`
	ExpiresAt     *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
	CourseID      *string            `db:"course_id" json:"course_id,omitempty"`
	FacilityID    *string            `db:"facility_id" json:"facility_id,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}
