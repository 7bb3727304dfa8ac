package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"answerhub/internal/models"
)

// QuestionStore is the question persistence interface consumed by the services
type QuestionStore interface {
	Create(question *models.Question) error
	GetByID(id uuid.UUID) (*models.Question, error)
	IncrementAnswerCount(id uuid.UUID) error
	UpdateStatus(id uuid.UUID, status string) error
}

// QuestionRepository handles database operations for questions
type QuestionRepository struct {
	q DBTX
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(q DBTX) *QuestionRepository {
	return &QuestionRepository{q: q}
}

const questionColumns = `id, author_id, title, body, status, answer_count, created_at, updated_at`

// Create inserts a new question
func (r *QuestionRepository) Create(question *models.Question) error {
	query := `
		INSERT INTO questions (id, author_id, title, body, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING answer_count, created_at, updated_at
	`

	return r.q.QueryRow(
		query,
		question.ID,
		question.AuthorID,
		question.Title,
		question.Body,
		question.Status,
	).Scan(&question.AnswerCount, &question.CreatedAt, &question.UpdatedAt)
}

// GetByID retrieves a question, returning nil when absent
func (r *QuestionRepository) GetByID(id uuid.UUID) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	var q models.Question
	err := r.q.QueryRow(query, id).Scan(
		&q.ID,
		&q.AuthorID,
		&q.Title,
		&q.Body,
		&q.Status,
		&q.AnswerCount,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &q, nil
}

// IncrementAnswerCount bumps the question's answer counter
func (r *QuestionRepository) IncrementAnswerCount(id uuid.UUID) error {
	query := `UPDATE questions SET answer_count = answer_count + 1, updated_at = NOW() WHERE id = $1`

	result, err := r.q.Exec(query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// UpdateStatus writes a new question status
func (r *QuestionRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE questions SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.q.Exec(query, id, status)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
