package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/absensi-dev/absensi-api/internal/service"
	"github.com/absensi-dev/absensi-api/pkg/response"
)

type exportService interface {
	AttendanceReport(ctx context.Context, format string) (*service.ExportFile, error)
}

// ExportHandler serves the attendance report downloads.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Attendance renders the attendance report in the requested format
// (csv by default, or pdf).
func (h *ExportHandler) Attendance(c *gin.Context) {
	file, err := h.exports.AttendanceReport(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
