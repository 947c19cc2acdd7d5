package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/absensi-dev/absensi-api/internal/models"
	"github.com/absensi-dev/absensi-api/internal/repository"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

type meetingRepository interface {
	Current(ctx context.Context) (*models.Meeting, error)
	Start(ctx context.Context) (*models.Meeting, error)
	End(ctx context.Context, id string, endedAt time.Time) error
}

type attendanceWriter interface {
	Record(ctx context.Context, studentID, deviceID, meetingID string) (*models.Attendance, bool, error)
}

// MeetingService drives the meeting lifecycle: not started, in progress,
// ended. At most one meeting is in progress at a time and attendance is
// recorded at most once per student per meeting.
type MeetingService struct {
	meetings    meetingRepository
	attendances attendanceWriter
	logger      *zap.Logger
}

// NewMeetingService constructs a MeetingService.
func NewMeetingService(meetings meetingRepository, attendances attendanceWriter, logger *zap.Logger) *MeetingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeetingService{meetings: meetings, attendances: attendances, logger: logger}
}

// Start begins a new meeting. When one is already running the existing
// meeting is returned with created=false; that is a benign conflict, not an
// error.
func (s *MeetingService) Start(ctx context.Context) (*models.Meeting, bool, error) {
	current, err := s.meetings.Current(ctx)
	if err == nil {
		return current, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "current meeting lookup failed")
	}

	meeting, err := s.meetings.Start(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrMeetingInProgress) {
			// Lost the race against another start; report the winner.
			current, lookupErr := s.meetings.Current(ctx)
			if lookupErr != nil {
				return nil, false, appErrors.Wrap(lookupErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "current meeting lookup failed")
			}
			return current, false, nil
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "meeting start failed")
	}
	s.logger.Info("meeting started", zap.String("meeting_id", meeting.ID))
	return meeting, true, nil
}

// End closes the in-progress meeting.
func (s *MeetingService) End(ctx context.Context) (*models.Meeting, error) {
	meeting, err := s.meetings.Current(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoMeeting
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "current meeting lookup failed")
	}

	endedAt := time.Now().UTC()
	if err := s.meetings.End(ctx, meeting.ID, endedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "meeting end failed")
	}
	meeting.InProgress = false
	meeting.EndedAt = &endedAt
	s.logger.Info("meeting ended", zap.String("meeting_id", meeting.ID))
	return meeting, nil
}

// Current returns the in-progress meeting.
func (s *MeetingService) Current(ctx context.Context) (*models.Meeting, error) {
	meeting, err := s.meetings.Current(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoMeeting
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "current meeting lookup failed")
	}
	return meeting, nil
}

// AttendanceResult reports the outcome of an attendance request.
type AttendanceResult struct {
	Attendance *models.Attendance `json:"attendance"`
	Meeting    *models.Meeting    `json:"meeting"`
	Already    bool               `json:"-"`
}

// RecordAttendance marks the session's student present in the in-progress
// meeting. A repeated request is an idempotent read of the existing row,
// reported through Already rather than as an error.
func (s *MeetingService) RecordAttendance(ctx context.Context, sess *session.Session) (*AttendanceResult, error) {
	meeting, err := s.meetings.Current(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoMeeting, "session did not started yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "current meeting lookup failed")
	}
	if !sess.Registered() {
		return nil, appErrors.ErrMustRegister
	}

	attendance, created, err := s.attendances.Record(ctx, sess.StudentID, sess.DeviceID, meeting.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "attendance record failed")
	}
	if created {
		s.logger.Info("attendance recorded",
			zap.String("student_id", sess.StudentID),
			zap.String("meeting_id", meeting.ID))
	}
	return &AttendanceResult{Attendance: attendance, Meeting: meeting, Already: !created}, nil
}
