package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/absensi-dev/absensi-api/internal/models"
)

// ScoreRepository manages persistence for score records.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository constructs a ScoreRepository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// List returns all scores, newest first.
func (r *ScoreRepository) List(ctx context.Context) ([]models.Score, error) {
	const query = `SELECT id, student_id, meeting_id, score, full_score, reason, created_at, updated_at
        FROM scores ORDER BY created_at DESC`
	var scores []models.Score
	if err := r.db.SelectContext(ctx, &scores, query); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return scores, nil
}

// FindByID fetches a score by ID.
func (r *ScoreRepository) FindByID(ctx context.Context, id string) (*models.Score, error) {
	const query = `SELECT id, student_id, meeting_id, score, full_score, reason, created_at, updated_at
        FROM scores WHERE id = $1`
	var score models.Score
	if err := r.db.GetContext(ctx, &score, query, id); err != nil {
		return nil, err
	}
	return &score, nil
}

// Create inserts a new score record.
func (r *ScoreRepository) Create(ctx context.Context, score *models.Score) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if score.CreatedAt.IsZero() {
		score.CreatedAt = now
	}
	score.UpdatedAt = now
	const query = `INSERT INTO scores (id, student_id, meeting_id, score, full_score, reason, created_at, updated_at)
        VALUES (:id, :student_id, :meeting_id, :score, :full_score, :reason, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("create score: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of an existing score.
func (r *ScoreRepository) Update(ctx context.Context, score *models.Score) error {
	score.UpdatedAt = time.Now().UTC()
	const query = `UPDATE scores SET score = :score, full_score = :full_score, reason = :reason, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	return nil
}
