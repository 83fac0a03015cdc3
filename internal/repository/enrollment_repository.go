package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments. All reads are
// program-scoped so the access guard's restriction carries down to SQL.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

var enrollmentSortColumns = map[string]string{
	"enrolled_at": "e.enrolled_at",
	"status":      "e.status",
	"price":       "e.price",
}

// List returns enrollments matching the filter with joined display names.
// An empty filter.ProgramID means unrestricted.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := ` FROM enrollments e
        JOIN users s ON s.id = e.student_id
        JOIN courses c ON c.id = e.course_id
        JOIN facilities f ON f.id = e.facility_id
        WHERE 1=1`
	var conditions []string
	var args []interface{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if filter.ProgramID != "" {
		add("e.program_id = $%d", filter.ProgramID)
	}
	if filter.StudentID != "" {
		add("e.student_id = $%d", filter.StudentID)
	}
	if filter.CourseID != "" {
		add("e.course_id = $%d", filter.CourseID)
	}
	if filter.FacilityID != "" {
		add("e.facility_id = $%d", filter.FacilityID)
	}
	if filter.Status != "" {
		add("e.status = $%d", filter.Status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	sortCol, ok := enrollmentSortColumns[filter.SortBy]
	if !ok {
		sortCol = "e.enrolled_at"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)

	query := `SELECT e.id, e.student_id, e.program_id, e.course_id, e.facility_id, e.age_group, e.location_type, e.session_type,
        e.price, e.discount_amount, e.coupon_code, e.status, e.enrolled_at, e.cancelled_at,
        s.full_name AS student_name, c.name AS course_name, f.name AS facility_name` + base +
		fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortCol, order, len(args)-1, len(args))

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID returns an enrollment restricted to the given program when
// programID is non-empty.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id, programID string) (*models.Enrollment, error) {
	query := `SELECT id, student_id, program_id, course_id, facility_id, age_group, location_type, session_type, price, discount_amount, coupon_code, status, enrolled_at, cancelled_at
        FROM enrollments WHERE id = $1`
	args := []interface{}{id}
	if programID != "" {
		args = append(args, programID)
		query += fmt.Sprintf(" AND program_id = $%d", len(args))
	}
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, args...); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create persists a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, program_id, course_id, facility_id, age_group, location_type, session_type, price, discount_amount, coupon_code, status, enrolled_at, cancelled_at)
        VALUES (:id, :student_id, :program_id, :course_id, :facility_id, :age_group, :location_type, :session_type, :price, :discount_amount, :coupon_code, :status, :enrolled_at, :cancelled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Cancel marks an enrollment cancelled. The program restriction applies
// when programID is non-empty.
func (r *EnrollmentRepository) Cancel(ctx context.Context, id, programID string) error {
	query := `UPDATE enrollments SET status = $2, cancelled_at = $3 WHERE id = $1 AND status = $4`
	args := []interface{}{id, models.EnrollmentStatusCancelled, time.Now().UTC(), models.EnrollmentStatusActive}
	if programID != "" {
		args = append(args, programID)
		query += fmt.Sprintf(" AND program_id = $%d", len(args))
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("cancel enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel enrollment: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
