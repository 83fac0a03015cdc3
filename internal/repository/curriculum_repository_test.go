package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-admin-api/internal/dto"
)

func TestUpdateModuleSequencesCommitsWhenAllRowsMatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE modules SET sequence").
		WithArgs("mod-1", 2, sqlmock.AnyArg(), "lvl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE modules SET sequence").
		WithArgs("mod-2", 1, sqlmock.AnyArg(), "lvl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateModuleSequences(context.Background(), "lvl-1", []dto.ReorderItem{
		{ID: "mod-1", Sequence: 2},
		{ID: "mod-2", Sequence: 1},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateModuleSequencesRollsBackOnForeignModule(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE modules SET sequence").
		WithArgs("mod-1", 2, sqlmock.AnyArg(), "lvl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// module belongs to another level so the constrained update hits nothing
	mock.ExpectExec("UPDATE modules SET sequence").
		WithArgs("mod-foreign", 1, sqlmock.AnyArg(), "lvl-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateModuleSequences(context.Background(), "lvl-1", []dto.ReorderItem{
		{ID: "mod-1", Sequence: 2},
		{ID: "mod-foreign", Sequence: 1},
	})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteModuleScopedMiss(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)

	mock.ExpectExec("DELETE FROM modules").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteModule(context.Background(), "mod-1", "prog-other")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
