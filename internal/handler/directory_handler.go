package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/absensi-dev/absensi-api/internal/middleware"
	"github.com/absensi-dev/absensi-api/internal/models"
	"github.com/absensi-dev/absensi-api/pkg/response"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

type directoryService interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	GetStudent(ctx context.Context, sess *session.Session, id string) (*models.Student, error)
	ListDevices(ctx context.Context) ([]models.Device, error)
	GetDevice(ctx context.Context, sess *session.Session, id string) (*models.Device, error)
	ListAttendances(ctx context.Context) ([]models.Attendance, error)
	GetAttendance(ctx context.Context, sess *session.Session, id string) (*models.Attendance, error)
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*models.Meeting, error)
	ListScores(ctx context.Context) ([]models.Score, error)
	GetScore(ctx context.Context, sess *session.Session, id string) (*models.Score, error)
}

// DirectoryHandler exposes the read endpoints for the five entities.
// Lists sit behind the admin middleware; get-by-id is self-or-admin with
// the ownership check inside the service.
type DirectoryHandler struct {
	directory directoryService
}

// NewDirectoryHandler constructs DirectoryHandler.
func NewDirectoryHandler(directory directoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

func (h *DirectoryHandler) ListStudents(c *gin.Context) {
	students, err := h.directory.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

func (h *DirectoryHandler) GetStudent(c *gin.Context) {
	student, err := h.directory.GetStudent(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

func (h *DirectoryHandler) ListDevices(c *gin.Context) {
	devices, err := h.directory.ListDevices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, devices)
}

func (h *DirectoryHandler) GetDevice(c *gin.Context) {
	device, err := h.directory.GetDevice(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, device)
}

func (h *DirectoryHandler) ListAttendances(c *gin.Context) {
	attendances, err := h.directory.ListAttendances(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendances)
}

func (h *DirectoryHandler) GetAttendance(c *gin.Context) {
	attendance, err := h.directory.GetAttendance(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendance)
}

func (h *DirectoryHandler) ListMeetings(c *gin.Context) {
	meetings, err := h.directory.ListMeetings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meetings)
}

func (h *DirectoryHandler) GetMeeting(c *gin.Context) {
	meeting, err := h.directory.GetMeeting(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meeting)
}

func (h *DirectoryHandler) ListScores(c *gin.Context) {
	scores, err := h.directory.ListScores(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores)
}

func (h *DirectoryHandler) GetScore(c *gin.Context) {
	score, err := h.directory.GetScore(c.Request.Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, score)
}
