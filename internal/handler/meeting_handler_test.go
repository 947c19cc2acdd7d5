package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absensi-dev/absensi-api/internal/models"
	"github.com/absensi-dev/absensi-api/internal/service"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

type meetingServiceMock struct {
	startFn   func(ctx context.Context) (*models.Meeting, bool, error)
	endFn     func(ctx context.Context) (*models.Meeting, error)
	currentFn func(ctx context.Context) (*models.Meeting, error)
	attendFn  func(ctx context.Context, sess *session.Session) (*service.AttendanceResult, error)
}

func (m *meetingServiceMock) Start(ctx context.Context) (*models.Meeting, bool, error) {
	return m.startFn(ctx)
}

func (m *meetingServiceMock) End(ctx context.Context) (*models.Meeting, error) {
	return m.endFn(ctx)
}

func (m *meetingServiceMock) Current(ctx context.Context) (*models.Meeting, error) {
	return m.currentFn(ctx)
}

func (m *meetingServiceMock) RecordAttendance(ctx context.Context, sess *session.Session) (*service.AttendanceResult, error) {
	return m.attendFn(ctx, sess)
}

func runningMeeting() *models.Meeting {
	return &models.Meeting{ID: "meet-1", InProgress: true, StartedAt: time.Now().UTC()}
}

func TestMeetingStart(t *testing.T) {
	h := NewMeetingHandler(&meetingServiceMock{
		startFn: func(ctx context.Context) (*models.Meeting, bool, error) {
			return runningMeeting(), true, nil
		},
	}, nil)

	c, w := testContext(t, adminTestSession(), http.MethodPost, "/api/v1/current_meeting", nil)
	h.Start(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "meet-1", env.Data["id"])
}

func TestMeetingStartAlreadyRunning(t *testing.T) {
	h := NewMeetingHandler(&meetingServiceMock{
		startFn: func(ctx context.Context) (*models.Meeting, bool, error) {
			return runningMeeting(), false, nil
		},
	}, nil)

	c, w := testContext(t, adminTestSession(), http.MethodPost, "/api/v1/current_meeting", nil)
	h.Start(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["already_in_progress"])
	assert.Equal(t, "meet-1", env.Data["id"])
}

func TestMeetingCurrentNone(t *testing.T) {
	h := NewMeetingHandler(&meetingServiceMock{
		currentFn: func(ctx context.Context) (*models.Meeting, error) {
			return nil, appErrors.ErrNoMeeting
		},
	}, nil)

	c, w := testContext(t, adminTestSession(), http.MethodGet, "/api/v1/current_meeting", nil)
	h.Current(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NO_MEETING_IN_PROGRESS", env.Error.Code)
}

func TestMeetingEnd(t *testing.T) {
	h := NewMeetingHandler(&meetingServiceMock{
		endFn: func(ctx context.Context) (*models.Meeting, error) {
			endedAt := time.Now().UTC()
			return &models.Meeting{ID: "meet-1", InProgress: false, StartedAt: endedAt.Add(-time.Hour), EndedAt: &endedAt}, nil
		},
	}, nil)

	c, w := testContext(t, adminTestSession(), http.MethodDelete, "/api/v1/current_meeting", nil)
	h.End(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, false, env.Data["in_progress"])
}

func TestAttend(t *testing.T) {
	h := NewMeetingHandler(&meetingServiceMock{
		attendFn: func(ctx context.Context, sess *session.Session) (*service.AttendanceResult, error) {
			return &service.AttendanceResult{
				Attendance: &models.Attendance{ID: "att-1", StudentID: sess.StudentID, DeviceID: sess.DeviceID, MeetingID: "meet-1"},
				Meeting:    runningMeeting(),
			}, nil
		},
	}, nil)

	sess := &session.Session{Token: "tok", DeviceID: "dev-1", StudentID: "std-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/attendance", nil)
	h.Attend(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAttendAlreadyRecorded(t *testing.T) {
	h := NewMeetingHandler(&meetingServiceMock{
		attendFn: func(ctx context.Context, sess *session.Session) (*service.AttendanceResult, error) {
			return &service.AttendanceResult{
				Attendance: &models.Attendance{ID: "att-1", StudentID: sess.StudentID, DeviceID: sess.DeviceID, MeetingID: "meet-1"},
				Meeting:    runningMeeting(),
				Already:    true,
			}, nil
		},
	}, nil)

	sess := &session.Session{Token: "tok", DeviceID: "dev-1", StudentID: "std-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/attendance", nil)
	h.Attend(c)

	assert.Equal(t, http.StatusNonAuthoritativeInfo, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["already_recorded"])
}

func TestAttendNoMeeting(t *testing.T) {
	h := NewMeetingHandler(&meetingServiceMock{
		attendFn: func(ctx context.Context, sess *session.Session) (*service.AttendanceResult, error) {
			return nil, appErrors.Clone(appErrors.ErrNoMeeting, "session did not started yet")
		},
	}, nil)

	sess := &session.Session{Token: "tok", DeviceID: "dev-1", StudentID: "std-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/attendance", nil)
	h.Attend(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttendUnregistered(t *testing.T) {
	h := NewMeetingHandler(&meetingServiceMock{
		attendFn: func(ctx context.Context, sess *session.Session) (*service.AttendanceResult, error) {
			return nil, appErrors.ErrMustRegister
		},
	}, nil)

	sess := &session.Session{Token: "tok", DeviceID: "dev-1"}
	c, w := testContext(t, sess, http.MethodGet, "/api/v1/attendance", nil)
	h.Attend(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "MUST_REGISTER", env.Error.Code)
}

func adminTestSession() *session.Session {
	return &session.Session{Token: "tok", Admin: true, LocalUser: true}
}
