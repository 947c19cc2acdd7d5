package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/absensi-dev/absensi-api/internal/models"
	"github.com/absensi-dev/absensi-api/internal/service"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
	"github.com/absensi-dev/absensi-api/pkg/response"
)

type scoreService interface {
	Upsert(ctx context.Context, req service.UpsertScoreRequest) (*models.Score, error)
}

// ScoreHandler exposes the score upsert endpoint.
type ScoreHandler struct {
	scores scoreService
}

// NewScoreHandler constructs ScoreHandler.
func NewScoreHandler(scores scoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

// Upsert creates a score for (student[, meeting]) or updates the score
// identified by an explicit id.
func (h *ScoreHandler) Upsert(c *gin.Context) {
	var req service.UpsertScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid score payload"))
		return
	}

	score, err := h.scores.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, score)
}
