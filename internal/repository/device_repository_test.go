package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDeviceRepositoryGetOrCreateInserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDeviceRepository(db)

	rows := sqlmock.NewRows([]string{"id", "mac", "student_id", "created_at"}).
		AddRow("dev-1", "aa:bb:cc:dd:ee:ff", nil, time.Now())
	mock.ExpectQuery("INSERT INTO devices").
		WithArgs(sqlmock.AnyArg(), "aa:bb:cc:dd:ee:ff", sqlmock.AnyArg()).
		WillReturnRows(rows)

	device, err := repo.GetOrCreate(context.Background(), "aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	assert.Equal(t, "dev-1", device.ID)
	assert.False(t, device.Linked())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryGetOrCreateExisting(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDeviceRepository(db)

	// ON CONFLICT DO NOTHING returns no rows for an existing mac.
	mock.ExpectQuery("INSERT INTO devices").
		WithArgs(sqlmock.AnyArg(), "aa:bb:cc:dd:ee:ff", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "mac", "student_id", "created_at"}))
	student := "std-1"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, mac, student_id, created_at FROM devices WHERE mac = $1")).
		WithArgs("aa:bb:cc:dd:ee:ff").
		WillReturnRows(sqlmock.NewRows([]string{"id", "mac", "student_id", "created_at"}).
			AddRow("dev-1", "aa:bb:cc:dd:ee:ff", student, time.Now()))

	device, err := repo.GetOrCreate(context.Background(), "aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	assert.Equal(t, "dev-1", device.ID)
	require.True(t, device.Linked())
	assert.Equal(t, "std-1", *device.StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryLinkStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDeviceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE devices SET student_id = $2 WHERE id = $1 AND student_id IS NULL")).
		WithArgs("dev-1", "std-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.LinkStudent(context.Background(), "dev-1", "std-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryLinkStudentAlreadyLinked(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDeviceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE devices SET student_id = $2 WHERE id = $1 AND student_id IS NULL")).
		WithArgs("dev-1", "std-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LinkStudent(context.Background(), "dev-1", "std-2")
	assert.ErrorIs(t, err, ErrAlreadyLinked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
