package dto

import (
	"time"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// PriceLookupRequest asks for the price of one enrollment combination.
type PriceLookupRequest struct {
	FacilityID   string              `json:"facility_id" validate:"required"`
	CourseID     string              `json:"course_id" validate:"required"`
	AgeGroup     string              `json:"age_group" validate:"required"`
	LocationType models.LocationType `json:"location_type" validate:"required"`
	SessionType  string              `json:"session_type" validate:"required"`
	CouponCode   string              `json:"coupon_code,omitempty"`
}

// PriceRange is the course-level fallback when no exact entry exists.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// CouponOutcome reports the result of applying a coupon code. An invalid
// code yields Valid=false with the full price intact, never an error.
type CouponOutcome struct {
	Total          int64  `json:"total"`
	DiscountAmount int64  `json:"discount_amount"`
	Valid          bool   `json:"valid"`
	Message        string `json:"message,omitempty"`
}

// PriceLookupResult is the resolver's answer. Applicable=false means the
// requested axes are not configured for the course; Found=false means no
// exact entry exists and FallbackRange carries the course base range.
type PriceLookupResult struct {
	Applicable     bool           `json:"applicable"`
	Reason         string         `json:"reason,omitempty"`
	Found          bool           `json:"found"`
	Price          *int64         `json:"price,omitempty"`
	FormattedPrice string         `json:"formatted_price,omitempty"`
	FallbackRange  *PriceRange    `json:"fallback_range,omitempty"`
	Coupon         *CouponOutcome `json:"coupon,omitempty"`
}

// MatrixEntry is one priced tuple in a facility's pricing matrix.
type MatrixEntry struct {
	EntryID        string              `json:"entry_id"`
	AgeGroup       string              `json:"age_group"`
	LocationType   models.LocationType `json:"location_type"`
	SessionType    string              `json:"session_type"`
	Price          int64               `json:"price"`
	FormattedPrice string              `json:"formatted_price"`
}

// PricingMatrix groups a facility's active entries by course.
type PricingMatrix struct {
	FacilityID  string                   `json:"facility_id"`
	Courses     map[string][]MatrixEntry `json:"courses"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// CreatePricingEntryRequest creates or reactivates a priced tuple.
type CreatePricingEntryRequest struct {
	FacilityID   string              `json:"facility_id" validate:"required"`
	CourseID     string              `json:"course_id" validate:"required"`
	AgeGroup     string              `json:"age_group" validate:"required"`
	LocationType models.LocationType `json:"location_type" validate:"required"`
	SessionType  string              `json:"session_type" validate:"required"`
	Price        int64               `json:"price" validate:"min=0"`
	Notes        string              `json:"notes,omitempty"`
}

// UpdatePricingEntryRequest changes price or notes of an entry.
type UpdatePricingEntryRequest struct {
	Price *int64  `json:"price,omitempty" validate:"omitempty,min=0"`
	Notes *string `json:"notes,omitempty"`
}

// ImportPricingRequest copies a facility's active entries to another
// facility, optionally adjusting each copied price by a flat amount.
type ImportPricingRequest struct {
	SourceFacilityID string `json:"source_facility_id" validate:"required"`
	TargetFacilityID string `json:"target_facility_id" validate:"required"`
	Overwrite        bool   `json:"overwrite"`
	Adjustment       int64  `json:"adjustment"`
}

// ImportPricingSummary reports per-tuple outcomes of an import run.
// Skipped tuples are not failures: they existed at the target and
// overwrite was off.
type ImportPricingSummary struct {
	Copied        int                 `json:"copied"`
	Skipped       int                 `json:"skipped"`
	Failed        int                 `json:"failed"`
	SkippedTuples []models.PricingKey `json:"skipped_tuples,omitempty"`
	Failures      []BulkFailure       `json:"failures,omitempty"`
}
