package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/absensi-dev/absensi-api/internal/models"
	appErrors "github.com/absensi-dev/absensi-api/pkg/errors"
)

type scoreRepository interface {
	FindByID(ctx context.Context, id string) (*models.Score, error)
	Create(ctx context.Context, score *models.Score) error
	Update(ctx context.Context, score *models.Score) error
}

// ScoreService handles the combined create-or-update score operation.
type ScoreService struct {
	scores    scoreRepository
	students  studentReader
	meetings  meetingReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScoreService constructs a ScoreService.
func NewScoreService(scores scoreRepository, students studentReader, meetings meetingReader, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{scores: scores, students: students, meetings: meetings, validator: validate, logger: logger}
}

// UpsertScoreRequest creates a score for (student[, meeting]) or, when ID is
// set, updates that existing score's marks.
type UpsertScoreRequest struct {
	ID        *string `json:"id"`
	StudentID string  `json:"student" validate:"required"`
	MeetingID *string `json:"meeting"`
	Score     float64 `json:"score"`
	FullScore float64 `json:"full_score"`
	Reason    *string `json:"reason"`
}

// Upsert applies the request. Unknown student, meeting or score IDs are
// not-found errors; everything else is surfaced directly.
func (s *ScoreService) Upsert(ctx context.Context, req UpsertScoreRequest) (*models.Score, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, notFoundOr(err, "student lookup failed")
	}

	if req.MeetingID != nil && *req.MeetingID != "" {
		if _, err := s.meetings.FindByID(ctx, *req.MeetingID); err != nil {
			return nil, notFoundOr(err, "meeting lookup failed")
		}
	} else {
		req.MeetingID = nil
	}

	if req.ID != nil && *req.ID != "" {
		score, err := s.scores.FindByID(ctx, *req.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.ErrNotFound
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "score lookup failed")
		}
		score.Score = req.Score
		score.FullScore = req.FullScore
		score.Reason = req.Reason
		if err := s.scores.Update(ctx, score); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "score update failed")
		}
		s.logger.Info("score updated", zap.String("score_id", score.ID))
		return score, nil
	}

	score := &models.Score{
		StudentID: student.ID,
		MeetingID: req.MeetingID,
		Score:     req.Score,
		FullScore: req.FullScore,
		Reason:    req.Reason,
	}
	if err := s.scores.Create(ctx, score); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "score create failed")
	}
	s.logger.Info("score created", zap.String("score_id", score.ID), zap.String("student_id", student.ID))
	return score, nil
}
