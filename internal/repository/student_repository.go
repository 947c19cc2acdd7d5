package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/absensi-dev/absensi-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students ordered by student number.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, number, name, created_at, updated_at FROM students ORDER BY number`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, number, name, created_at, updated_at FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByNumber fetches a student by their external student number.
func (r *StudentRepository) FindByNumber(ctx context.Context, number string) (*models.Student, error) {
	const query = `SELECT id, number, name, created_at, updated_at FROM students WHERE number = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, number); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, number, name, created_at, updated_at)
        VALUES (:id, :number, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Upsert creates or updates a student keyed by number and reports whether a
// new row was inserted. The conflict clause makes concurrent imports of the
// same roster safe.
func (r *StudentRepository) Upsert(ctx context.Context, number, name string) (*models.Student, bool, error) {
	now := time.Now().UTC()
	const query = `INSERT INTO students (id, number, name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (number) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at
        RETURNING id, number, name, created_at, updated_at, (xmax = 0) AS inserted`
	row := struct {
		models.Student
		Inserted bool `db:"inserted"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, uuid.NewString(), number, name, now); err != nil {
		return nil, false, fmt.Errorf("upsert student: %w", err)
	}
	return &row.Student, row.Inserted, nil
}
