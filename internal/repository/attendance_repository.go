package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/absensi-dev/absensi-api/internal/models"
)

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns all attendance rows, newest first.
func (r *AttendanceRepository) List(ctx context.Context) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, device_id, meeting_id, created_at FROM attendances ORDER BY created_at DESC`
	var attendances []models.Attendance
	if err := r.db.SelectContext(ctx, &attendances, query); err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}
	return attendances, nil
}

// FindByID fetches an attendance row by ID.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	const query = `SELECT id, student_id, device_id, meeting_id, created_at FROM attendances WHERE id = $1`
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, query, id); err != nil {
		return nil, err
	}
	return &attendance, nil
}

// FindByStudentAndMeeting fetches the attendance row for one student in one
// meeting.
func (r *AttendanceRepository) FindByStudentAndMeeting(ctx context.Context, studentID, meetingID string) (*models.Attendance, error) {
	const query = `SELECT id, student_id, device_id, meeting_id, created_at FROM attendances
        WHERE student_id = $1 AND meeting_id = $2`
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, query, studentID, meetingID); err != nil {
		return nil, err
	}
	return &attendance, nil
}

// Record inserts an attendance row for (student, meeting) at most once.
// When the row already exists the insert is a no-op and the existing row is
// returned with created=false.
func (r *AttendanceRepository) Record(ctx context.Context, studentID, deviceID, meetingID string) (*models.Attendance, bool, error) {
	const insert = `INSERT INTO attendances (id, student_id, device_id, meeting_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (student_id, meeting_id) DO NOTHING
        RETURNING id, student_id, device_id, meeting_id, created_at`
	var attendance models.Attendance
	err := r.db.GetContext(ctx, &attendance, insert, uuid.NewString(), studentID, deviceID, meetingID, time.Now().UTC())
	if err == nil {
		return &attendance, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("record attendance: %w", err)
	}

	existing, err := r.FindByStudentAndMeeting(ctx, studentID, meetingID)
	if err != nil {
		return nil, false, fmt.Errorf("fetch existing attendance: %w", err)
	}
	return existing, false, nil
}

// ReportRows returns the denormalised rows backing the attendance report
// export, ordered by meeting then student number.
func (r *AttendanceRepository) ReportRows(ctx context.Context) ([]models.AttendanceReportRow, error) {
	const query = `SELECT m.id AS meeting_id, m.started_at AS meeting_started_at, m.ended_at AS meeting_ended_at,
        s.number AS student_number, s.name AS student_name, d.mac AS device_mac, a.created_at AS recorded_at
        FROM attendances a
        JOIN meetings m ON m.id = a.meeting_id
        JOIN students s ON s.id = a.student_id
        JOIN devices d ON d.id = a.device_id
        ORDER BY m.started_at, s.number`
	var rows []models.AttendanceReportRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("attendance report rows: %w", err)
	}
	return rows, nil
}
