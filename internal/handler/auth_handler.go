package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/absensi-dev/absensi-api/internal/middleware"
	"github.com/absensi-dev/absensi-api/internal/service"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/response"
	"github.com/absensi-dev/absensi-api/pkg/session"
)

type authService interface {
	Login(ctx context.Context, sess *session.Session, req service.LoginRequest) (int, error)
	CanLogin(ctx context.Context, sess *session.Session) service.LoginStatus
}

// AuthHandler exposes the admin login endpoints.
type AuthHandler struct {
	auth    authService
	metrics *service.MetricsService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth authService, metrics *service.MetricsService) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: metrics}
}

// Login validates admin credentials against configuration. Failed attempts
// burn the session's retry budget; an exhausted budget bans the session.
func (h *AuthHandler) Login(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	tries, err := h.auth.Login(c.Request.Context(), sess, req)
	if err != nil {
		if errors.Is(err, appErrors.ErrBadCredentials) {
			h.metrics.RecordLoginFailure()
			response.ErrorMeta(c, err, map[string]interface{}{"tries_left": tries})
			return
		}
		if errors.Is(err, appErrors.ErrBanned) {
			h.metrics.RecordLoginFailure()
		}
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"admin": true})
}

// CanLogin reports whether further login attempts are allowed.
func (h *AuthHandler) CanLogin(c *gin.Context) {
	sess := middleware.SessionFrom(c)

	status := h.auth.CanLogin(c.Request.Context(), sess)
	code := http.StatusOK
	if status.Banned {
		code = http.StatusForbidden
	}
	response.JSON(c, code, status)
}
