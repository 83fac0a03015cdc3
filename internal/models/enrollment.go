package models

import "time"

// EnrollmentStatus represents enrollment lifecycle state.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment registers a student into a priced course combination. The
// resolved price and any coupon discount are recorded at enrollment time so
// later pricing changes do not rewrite history.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	ProgramID      string           `db:"program_id" json:"program_id"`
	CourseID       string           `db:"course_id" json:"course_id"`
	FacilityID     string           `db:"facility_id" json:"facility_id"`
	AgeGroup       string           `db:"age_group" json:"age_group"`
	LocationType   LocationType     `db:"location_type" json:"location_type"`
	SessionType    string           `db:"session_type" json:"session_type"`
	Price          int64            `db:"price" json:"price"`
	DiscountAmount int64            `db:"discount_amount" json:"discount_amount"`
	CouponCode     *string          `db:"coupon_code" json:"coupon_code,omitempty"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt     time.Time        `db:"enrolled_at" json:"enrolled_at"`
	CancelledAt    *time.Time       `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

// EnrollmentDetail joins contextual names for listing endpoints.
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `db:"student_name" json:"student_name"`
	CourseName   string `db:"course_name" json:"course_name"`
	FacilityName string `db:"facility_name" json:"facility_name"`
}

// EnrollmentFilter captures filtering criteria for listing enrollments.
type EnrollmentFilter struct {
	ProgramID  string
	StudentID  string
	CourseID   string
	FacilityID string
	Status     EnrollmentStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
