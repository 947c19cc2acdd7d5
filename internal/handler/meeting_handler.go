package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/absensi-dev/absensi-api/internal/middleware"
	"github.com/absensi-dev/absensi-api/internal/models"
	"github.com/absensi-dev/absensi-api/internal/service"
	"github.com/absensi-dev/absensi-api/pkg/response"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

type meetingService interface {
	Start(ctx context.Context) (*models.Meeting, bool, error)
	End(ctx context.Context) (*models.Meeting, error)
	Current(ctx context.Context) (*models.Meeting, error)
	RecordAttendance(ctx context.Context, sess *session.Session) (*service.AttendanceResult, error)
}

// MeetingHandler exposes the meeting lifecycle and attendance recording.
type MeetingHandler struct {
	meetings meetingService
	metrics  *service.MetricsService
}

// NewMeetingHandler constructs MeetingHandler.
func NewMeetingHandler(meetings meetingService, metrics *service.MetricsService) *MeetingHandler {
	return &MeetingHandler{meetings: meetings, metrics: metrics}
}

// Current returns the in-progress meeting, or 404 when none is running.
func (h *MeetingHandler) Current(c *gin.Context) {
	meeting, err := h.meetings.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meeting)
}

// Start begins a new meeting. When one is already in progress the running
// meeting is returned with 202 instead of an error.
func (h *MeetingHandler) Start(c *gin.Context) {
	meeting, created, err := h.meetings.Start(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if !created {
		response.JSON(c, http.StatusAccepted, meeting, map[string]interface{}{"already_in_progress": true})
		return
	}
	response.JSON(c, http.StatusOK, meeting)
}

// End closes the in-progress meeting.
func (h *MeetingHandler) End(c *gin.Context) {
	meeting, err := h.meetings.End(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meeting)
}

// Attend records the caller's attendance for the in-progress meeting. A
// repeated request returns 203 with the existing record instead of a
// duplicate.
func (h *MeetingHandler) Attend(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	result, err := h.meetings.RecordAttendance(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Already {
		response.JSON(c, http.StatusNonAuthoritativeInfo, result, map[string]interface{}{"already_recorded": true})
		return
	}
	h.metrics.RecordAttendance()
	response.JSON(c, http.StatusOK, result)
}
