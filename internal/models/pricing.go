package models

import "time"

// PricingKey identifies the combination a price is quoted for. At most one
// active PricingEntry exists per key; the storage layer enforces this with a
// partial unique index over active rows.
type PricingKey struct {
	FacilityID   string       `json:"facility_id"`
	CourseID     string       `json:"course_id"`
	AgeGroup     string       `json:"age_group"`
	LocationType LocationType `json:"location_type"`
	SessionType  string       `json:"session_type"`
}

// PricingEntry is the authoritative price for a key, in minor currency
// units. Entries are deactivated rather than deleted so historical
// enrollments keep a valid reference.
type PricingEntry struct {
	ID           string       `db:"id" json:"id"`
	FacilityID   string       `db:"facility_id" json:"facility_id"`
	CourseID     string       `db:"course_id" json:"course_id"`
	AgeGroup     string       `db:"age_group" json:"age_group"`
	LocationType LocationType `db:"location_type" json:"location_type"`
	SessionType  string       `db:"session_type" json:"session_type"`
	Price        int64        `db:"price" json:"price"`
	Active       bool         `db:"active" json:"active"`
	Notes        string       `db:"notes" json:"notes,omitempty"`
	CreatedBy    string       `db:"created_by" json:"created_by"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Key returns the pricing key of the entry.
func (e PricingEntry) Key() PricingKey {
	return PricingKey{
		FacilityID:   e.FacilityID,
		CourseID:     e.CourseID,
		AgeGroup:     e.AgeGroup,
		LocationType: e.LocationType,
		SessionType:  e.SessionType,
	}
}
