package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// CourseRepository handles persistence of program-owned courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, program_id, name, description, age_groups, session_types, location_types, base_price_min, base_price_max, active, created_at, updated_at`

// List returns courses. An empty programID means unrestricted; scoped
// callers always pass the program resolved by the access guard.
func (r *CourseRepository) List(ctx context.Context, programID string, activeOnly bool) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE 1=1`
	var args []interface{}
	if programID != "" {
		args = append(args, programID)
		query += fmt.Sprintf(" AND program_id = $%d", len(args))
	}
	if activeOnly {
		query += " AND active = TRUE"
	}
	query += " ORDER BY name"

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by identifier, restricted to the given program
// when programID is non-empty. Out-of-scope rows come back as no rows, so a
// caller cannot tell a foreign course from a missing one.
func (r *CourseRepository) FindByID(ctx context.Context, id, programID string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	args := []interface{}{id}
	if programID != "" {
		args = append(args, programID)
		query += fmt.Sprintf(" AND program_id = $%d", len(args))
	}
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, args...); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, program_id, name, description, age_groups, session_types, location_types, base_price_min, base_price_max, active, created_at, updated_at)
        VALUES (:id, :program_id, :name, :description, :age_groups, :session_types, :location_types, :base_price_min, :base_price_max, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update updates mutable fields of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET name = :name, description = :description, age_groups = :age_groups, session_types = :session_types, location_types = :location_types, base_price_min = :base_price_min, base_price_max = :base_price_max, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}
