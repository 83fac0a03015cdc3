package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/models"
)

func TestListActiveByUserJoinsActivePrograms(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "program_id", "role_in_program", "is_default", "assigned_by", "assigned_at"}).
		AddRow("asg-1", "u-1", "prog-a", string(models.RoleProgramAdmin), true, "admin", now)
	mock.ExpectQuery("JOIN programs p ON p.id = a.program_id").
		WithArgs("u-1").
		WillReturnRows(rows)

	assignments, err := repo.ListActiveByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "prog-a", assignments[0].ProgramID)
	assert.True(t, assignments[0].IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsMissReturnsFalse(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM program_assignments").
		WithArgs("u-1", "prog-a").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.Exists(context.Background(), "u-1", "prog-a")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDefaultAssignmentClearsPreviousDefault(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE program_assignments SET is_default = FALSE").
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO program_assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.ProgramAssignment{
		UserID:        "u-1",
		ProgramID:     "prog-a",
		RoleInProgram: models.RoleProgramAdmin,
		IsDefault:     true,
		AssignedBy:    "admin",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNonDefaultSkipsClear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO program_assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.ProgramAssignment{
		UserID:        "u-1",
		ProgramID:     "prog-a",
		RoleInProgram: models.RoleInstructor,
		AssignedBy:    "admin",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDefaultUnknownAssignmentRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE program_assignments SET is_default = FALSE").
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE program_assignments SET is_default = TRUE").
		WithArgs("asg-missing", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SetDefault(context.Background(), "u-1", "asg-missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAssignmentMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("DELETE FROM program_assignments").
		WithArgs("asg-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "asg-missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
