package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/absensi-dev/absensi-api/internal/middleware"
	"github.com/absensi-dev/absensi-api/internal/models"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/response"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

type registrationService interface {
	Register(ctx context.Context, sess *session.Session, stdNum string) (*models.Student, error)
	WhoAmI(ctx context.Context, sess *session.Session) (*models.Student, error)
}

// RegistrationHandler exposes device registration and identity endpoints.
type RegistrationHandler struct {
	registration registrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registration registrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// Register links the caller's device to the student whose number is given
// in std_num. A device can only be linked once.
func (h *RegistrationHandler) Register(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	student, err := h.registration.Register(c.Request.Context(), sess, c.Query("std_num"))
	if err != nil {
		if errors.Is(err, appErrors.ErrDeviceLinked) && student != nil {
			// Keep the linked student's name in the rejection so the
			// front-end can show who owns the device.
			response.ErrorMeta(c, err, map[string]interface{}{"name": student.Name})
			return
		}
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"name": student.Name})
}

// WhoAmI returns the student linked to the caller's device.
func (h *RegistrationHandler) WhoAmI(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	student, err := h.registration.WhoAmI(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"name": student.Name, "number": student.Number})
}
