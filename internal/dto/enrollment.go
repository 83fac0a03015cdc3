package dto

import "github.com/noah-isme/academy-admin-api/internal/models"

// CreateEnrollmentRequest registers a student into a priced combination.
// The price is resolved server-side at enrollment time.
type CreateEnrollmentRequest struct {
	StudentID    string              `json:"student_id" validate:"required"`
	CourseID     string              `json:"course_id" validate:"required"`
	FacilityID   string              `json:"facility_id" validate:"required"`
	AgeGroup     string              `json:"age_group" validate:"required"`
	LocationType models.LocationType `json:"location_type" validate:"required"`
	SessionType  string              `json:"session_type" validate:"required"`
	CouponCode   string              `json:"coupon_code,omitempty"`
}
