package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/absensi-dev/absensi-api/internal/models"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type deviceReader interface {
	List(ctx context.Context) ([]models.Device, error)
	FindByID(ctx context.Context, id string) (*models.Device, error)
}

type attendanceReader interface {
	List(ctx context.Context) ([]models.Attendance, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
}

type meetingReader interface {
	List(ctx context.Context) ([]models.Meeting, error)
	FindByID(ctx context.Context, id string) (*models.Meeting, error)
}

type scoreReader interface {
	List(ctx context.Context) ([]models.Score, error)
	FindByID(ctx context.Context, id string) (*models.Score, error)
}

// DirectoryService is the read façade over the five entities. Lists are
// admin-only (enforced at the route level); get-by-id is additionally open
// to a session whose linked student owns the record, and a denied request
// gets an explicit not-authorized error instead of a silent empty result.
type DirectoryService struct {
	students    studentRepository
	devices     deviceReader
	attendances attendanceReader
	meetings    meetingReader
	scores      scoreReader
	logger      *zap.Logger
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(students studentRepository, devices deviceReader, attendances attendanceReader, meetings meetingReader, scores scoreReader, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{
		students:    students,
		devices:     devices,
		attendances: attendances,
		meetings:    meetings,
		scores:      scores,
		logger:      logger,
	}
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.ErrNotFound
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, what)
}

// ListStudents returns every student.
func (s *DirectoryService) ListStudents(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list students failed")
	}
	return students, nil
}

// GetStudent returns one student, admin or self.
func (s *DirectoryService) GetStudent(ctx context.Context, sess *session.Session, id string) (*models.Student, error) {
	if !sess.Admin && sess.StudentID != id {
		return nil, appErrors.ErrNotAuthorized
	}
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "student lookup failed")
	}
	return student, nil
}

// ListDevices returns every device.
func (s *DirectoryService) ListDevices(ctx context.Context) ([]models.Device, error) {
	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list devices failed")
	}
	return devices, nil
}

// GetDevice returns one device, admin or the owner of its linked student.
func (s *DirectoryService) GetDevice(ctx context.Context, sess *session.Session, id string) (*models.Device, error) {
	device, err := s.devices.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "device lookup failed")
	}
	if !sess.Admin {
		if !device.Linked() || sess.StudentID == "" || *device.StudentID != sess.StudentID {
			return nil, appErrors.ErrNotAuthorized
		}
	}
	return device, nil
}

// ListAttendances returns every attendance row.
func (s *DirectoryService) ListAttendances(ctx context.Context) ([]models.Attendance, error) {
	attendances, err := s.attendances.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list attendances failed")
	}
	return attendances, nil
}

// GetAttendance returns one attendance row, admin or the attending student.
func (s *DirectoryService) GetAttendance(ctx context.Context, sess *session.Session, id string) (*models.Attendance, error) {
	attendance, err := s.attendances.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "attendance lookup failed")
	}
	if !sess.Admin && attendance.StudentID != sess.StudentID {
		return nil, appErrors.ErrNotAuthorized
	}
	return attendance, nil
}

// ListMeetings returns every meeting.
func (s *DirectoryService) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	meetings, err := s.meetings.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list meetings failed")
	}
	return meetings, nil
}

// GetMeeting returns one meeting. Meetings carry no per-student data but
// are only exposed to admin sessions, matching the route gating.
func (s *DirectoryService) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "meeting lookup failed")
	}
	return meeting, nil
}

// ListScores returns every score.
func (s *DirectoryService) ListScores(ctx context.Context) ([]models.Score, error) {
	scores, err := s.scores.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list scores failed")
	}
	return scores, nil
}

// GetScore returns one score, admin or the graded student.
func (s *DirectoryService) GetScore(ctx context.Context, sess *session.Session, id string) (*models.Score, error) {
	score, err := s.scores.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "score lookup failed")
	}
	if !sess.Admin && score.StudentID != sess.StudentID {
		return nil, appErrors.ErrNotAuthorized
	}
	return score, nil
}
