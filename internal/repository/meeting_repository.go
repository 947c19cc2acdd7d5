package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/absensi-dev/absensi-api/internal/models"
)

// ErrMeetingInProgress is returned when starting a meeting loses the race
// against another start.
var ErrMeetingInProgress = errors.New("a meeting is already in progress")

const pqUniqueViolation = "23505"

// MeetingRepository manages persistence for meeting records.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository constructs a MeetingRepository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// List returns all meetings, newest first.
func (r *MeetingRepository) List(ctx context.Context) ([]models.Meeting, error) {
	const query = `SELECT id, in_progress, started_at, ended_at FROM meetings ORDER BY started_at DESC`
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

// FindByID fetches a meeting by ID.
func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	const query = `SELECT id, in_progress, started_at, ended_at FROM meetings WHERE id = $1`
	var meeting models.Meeting
	if err := r.db.GetContext(ctx, &meeting, query, id); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// Current returns the in-progress meeting, or sql.ErrNoRows when none is.
func (r *MeetingRepository) Current(ctx context.Context) (*models.Meeting, error) {
	const query = `SELECT id, in_progress, started_at, ended_at FROM meetings WHERE in_progress LIMIT 1`
	var meeting models.Meeting
	if err := r.db.GetContext(ctx, &meeting, query); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// Start creates a new in-progress meeting. The partial unique index on
// in_progress turns a concurrent start into ErrMeetingInProgress instead
// of a second active row.
func (r *MeetingRepository) Start(ctx context.Context) (*models.Meeting, error) {
	meeting := &models.Meeting{
		ID:         uuid.NewString(),
		InProgress: true,
		StartedAt:  time.Now().UTC(),
	}
	const query = `INSERT INTO meetings (id, in_progress, started_at) VALUES (:id, :in_progress, :started_at)`
	if _, err := r.db.NamedExecContext(ctx, query, meeting); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrMeetingInProgress
		}
		return nil, fmt.Errorf("start meeting: %w", err)
	}
	return meeting, nil
}

// End closes the in-progress meeting and stamps its end time. Returns
// sql.ErrNoRows semantics via a zero rows-affected count mapped by the
// caller.
func (r *MeetingRepository) End(ctx context.Context, id string, endedAt time.Time) error {
	const query = `UPDATE meetings SET in_progress = false, ended_at = $2 WHERE id = $1 AND in_progress`
	res, err := r.db.ExecContext(ctx, query, id, endedAt)
	if err != nil {
		return fmt.Errorf("end meeting: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("end meeting: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("end meeting %s: already ended", id)
	}
	return nil
}
