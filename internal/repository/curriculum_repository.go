package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-admin-api/internal/dto"
	"github.com/noah-isme/academy-admin-api/internal/models"
)

// CurriculumRepository handles persistence of levels and modules. Program
// scoping reaches modules through the course chain: module -> level ->
// course -> program.
type CurriculumRepository struct {
	db *sqlx.DB
}

// NewCurriculumRepository constructs the repository.
func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// ListLevels returns the levels of a course ordered by sequence.
func (r *CurriculumRepository) ListLevels(ctx context.Context, courseID string) ([]models.Level, error) {
	const query = `SELECT id, course_id, name, sequence, status, created_at, updated_at FROM levels WHERE course_id = $1 ORDER BY sequence`
	var levels []models.Level
	if err := r.db.SelectContext(ctx, &levels, query, courseID); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return levels, nil
}

// FindLevelByID returns a level restricted to the given program when
// programID is non-empty.
func (r *CurriculumRepository) FindLevelByID(ctx context.Context, id, programID string) (*models.Level, error) {
	query := `SELECT l.id, l.course_id, l.name, l.sequence, l.status, l.created_at, l.updated_at
        FROM levels l`
	args := []interface{}{id}
	if programID != "" {
		args = append(args, programID)
		query += ` JOIN courses c ON c.id = l.course_id WHERE l.id = $1 AND c.program_id = $2`
	} else {
		query += ` WHERE l.id = $1`
	}
	var level models.Level
	if err := r.db.GetContext(ctx, &level, query, args...); err != nil {
		return nil, err
	}
	return &level, nil
}

// CreateLevel persists a new level.
func (r *CurriculumRepository) CreateLevel(ctx context.Context, level *models.Level) error {
	if level.ID == "" {
		level.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if level.CreatedAt.IsZero() {
		level.CreatedAt = now
	}
	level.UpdatedAt = now
	const query = `INSERT INTO levels (id, course_id, name, sequence, status, created_at, updated_at)
        VALUES (:id, :course_id, :name, :sequence, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, level); err != nil {
		return fmt.Errorf("create level: %w", err)
	}
	return nil
}

// ListModules returns the modules of a level ordered by sequence.
func (r *CurriculumRepository) ListModules(ctx context.Context, levelID string) ([]models.Module, error) {
	const query = `SELECT id, level_id, name, sequence, status, created_at, updated_at FROM modules WHERE level_id = $1 ORDER BY sequence`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, levelID); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// FindModuleByID returns a module restricted to the given program when
// programID is non-empty.
func (r *CurriculumRepository) FindModuleByID(ctx context.Context, id, programID string) (*models.Module, error) {
	query := `SELECT m.id, m.level_id, m.name, m.sequence, m.status, m.created_at, m.updated_at
        FROM modules m`
	args := []interface{}{id}
	if programID != "" {
		args = append(args, programID)
		query += ` JOIN levels l ON l.id = m.level_id
        JOIN courses c ON c.id = l.course_id
        WHERE m.id = $1 AND c.program_id = $2`
	} else {
		query += ` WHERE m.id = $1`
	}
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, args...); err != nil {
		return nil, err
	}
	return &module, nil
}

// CreateModule persists a new module.
func (r *CurriculumRepository) CreateModule(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if module.CreatedAt.IsZero() {
		module.CreatedAt = now
	}
	module.UpdatedAt = now
	const query = `INSERT INTO modules (id, level_id, name, sequence, status, created_at, updated_at)
        VALUES (:id, :level_id, :name, :sequence, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// UpdateModuleStatus changes a module's status, restricted to the program
// chain when programID is non-empty.
func (r *CurriculumRepository) UpdateModuleStatus(ctx context.Context, id string, status models.ModuleStatus, programID string) error {
	query := `UPDATE modules m SET status = $2, updated_at = $3 WHERE m.id = $1`
	args := []interface{}{id, status, time.Now().UTC()}
	if programID != "" {
		args = append(args, programID)
		query += fmt.Sprintf(` AND EXISTS (
            SELECT 1 FROM levels l JOIN courses c ON c.id = l.course_id
            WHERE l.id = m.level_id AND c.program_id = $%d)`, len(args))
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update module status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update module status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteModule removes a module, restricted to the program chain when
// programID is non-empty.
func (r *CurriculumRepository) DeleteModule(ctx context.Context, id, programID string) error {
	query := `DELETE FROM modules m WHERE m.id = $1`
	args := []interface{}{id}
	if programID != "" {
		args = append(args, programID)
		query += fmt.Sprintf(` AND EXISTS (
            SELECT 1 FROM levels l JOIN courses c ON c.id = l.course_id
            WHERE l.id = m.level_id AND c.program_id = $%d)`, len(args))
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateModuleSequences applies a whole reorder batch in one transaction.
// Either every sibling gets its new sequence or none does.
func (r *CurriculumRepository) UpdateModuleSequences(ctx context.Context, levelID string, items []dto.ReorderItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for _, item := range items {
		res, err := tx.ExecContext(ctx, `UPDATE modules SET sequence = $2, updated_at = $3 WHERE id = $1 AND level_id = $4`, item.ID, item.Sequence, now, levelID)
		if err != nil {
			return fmt.Errorf("reorder module %s: %w", item.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reorder module %s: %w", item.ID, err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
	}
	return tx.Commit()
}
