package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingRepositoryStart(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectExec("INSERT INTO meetings").
		WithArgs(sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	meeting, err := repo.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, meeting.InProgress)
	assert.NotEmpty(t, meeting.ID)
	assert.Nil(t, meeting.EndedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryStartLosesRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectExec("INSERT INTO meetings").
		WithArgs(sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Start(context.Background())
	assert.ErrorIs(t, err, ErrMeetingInProgress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryCurrentNone(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, in_progress, started_at, ended_at FROM meetings WHERE in_progress LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "in_progress", "started_at", "ended_at"}))

	_, err := repo.Current(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryEnd(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	endedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE meetings SET in_progress = false, ended_at = $2 WHERE id = $1 AND in_progress")).
		WithArgs("meet-1", endedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.End(context.Background(), "meet-1", endedAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryEndAlreadyEnded(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	endedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE meetings SET in_progress = false, ended_at = $2 WHERE id = $1 AND in_progress")).
		WithArgs("meet-1", endedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.End(context.Background(), "meet-1", endedAt)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
