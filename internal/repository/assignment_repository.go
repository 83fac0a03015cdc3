package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

// AssignmentRepository persists the principal-to-program relation consumed
// by the access guard.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListActiveByUser returns assignments whose program is still active.
// The access guard resolves every scoped request through this lookup.
func (r *AssignmentRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.ProgramAssignment, error) {
	const query = `SELECT a.id, a.user_id, a.program_id, a.role_in_program, a.is_default, a.assigned_by, a.assigned_at
        FROM program_assignments a
        JOIN programs p ON p.id = a.program_id
        WHERE a.user_id = $1 AND p.active = TRUE
        ORDER BY a.assigned_at`
	var assignments []models.ProgramAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, userID); err != nil {
		return nil, fmt.Errorf("list assignments for user: %w", err)
	}
	return assignments, nil
}

// ListByProgram returns the program's team with user details.
func (r *AssignmentRepository) ListByProgram(ctx context.Context, programID string) ([]models.ProgramAssignmentDetail, error) {
	const query = `SELECT a.id, a.user_id, a.program_id, a.role_in_program, a.is_default, a.assigned_by, a.assigned_at,
        u.full_name AS user_name, u.email AS user_email, p.name AS program_name
        FROM program_assignments a
        JOIN users u ON u.id = a.user_id
        JOIN programs p ON p.id = a.program_id
        WHERE a.program_id = $1
        ORDER BY a.assigned_at`
	var details []models.ProgramAssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, programID); err != nil {
		return nil, fmt.Errorf("list program team: %w", err)
	}
	return details, nil
}

// FindByID returns an assignment by identifier.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.ProgramAssignment, error) {
	const query = `SELECT id, user_id, program_id, role_in_program, is_default, assigned_by, assigned_at FROM program_assignments WHERE id = $1`
	var assignment models.ProgramAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Exists checks whether the user already holds an assignment for the program.
func (r *AssignmentRepository) Exists(ctx context.Context, userID, programID string) (bool, error) {
	const query = `SELECT 1 FROM program_assignments WHERE user_id = $1 AND program_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, userID, programID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return true, nil
}

// Create persists a new assignment. When the default flag is set, any
// previous default for the user is cleared in the same transaction so
// exactly one default survives.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.ProgramAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if assignment.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE program_assignments SET is_default = FALSE WHERE user_id = $1 AND is_default = TRUE`, assignment.UserID); err != nil {
			return fmt.Errorf("clear default assignment: %w", err)
		}
	}
	const query = `INSERT INTO program_assignments (id, user_id, program_id, role_in_program, is_default, assigned_by, assigned_at)
        VALUES (:id, :user_id, :program_id, :role_in_program, :is_default, :assigned_by, :assigned_at)`
	if _, err := tx.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return tx.Commit()
}

// SetDefault marks one assignment as the user's default, clearing others.
func (r *AssignmentRepository) SetDefault(ctx context.Context, userID, assignmentID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin default tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `UPDATE program_assignments SET is_default = FALSE WHERE user_id = $1 AND is_default = TRUE`, userID); err != nil {
		return fmt.Errorf("clear default assignment: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE program_assignments SET is_default = TRUE WHERE id = $1 AND user_id = $2`, assignmentID, userID)
	if err != nil {
		return fmt.Errorf("set default assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set default assignment: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM program_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
