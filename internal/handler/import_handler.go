package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/absensi-dev/absensi-api/internal/service"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/response"
)

type importService interface {
	ImportStudents(ctx context.Context, filename string, r io.Reader) (*service.ImportResult, error)
}

// ImportHandler exposes the roster spreadsheet upload.
type ImportHandler struct {
	imports importService
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(imports importService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// Students accepts a multipart .xlsx upload of (number, name) rows and
// upserts each as a student.
func (h *ImportHandler) Students(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field is required"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "could not open upload"))
		return
	}
	defer f.Close()

	result, err := h.imports.ImportStudents(c.Request.Context(), fileHeader.Filename, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
