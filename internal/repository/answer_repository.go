package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"answerhub/internal/models"
)

// AnswerStore is the answer persistence interface consumed by the services
type AnswerStore interface {
	Create(answer *models.Answer) error
	GetByID(id uuid.UUID) (*models.Answer, error)
	GetByQuestionAndAuthor(questionID, authorID uuid.UUID) (*models.Answer, error)
	ListByQuestion(questionID uuid.UUID) ([]models.Answer, error)
	UpdateStatus(id uuid.UUID, status string) error
}

// AnswerRepository handles database operations for answers
type AnswerRepository struct {
	q DBTX
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(q DBTX) *AnswerRepository {
	return &AnswerRepository{q: q}
}

const answerColumns = `id, question_id, author_id, body, status, created_at, updated_at`

func scanAnswer(row interface{ Scan(...any) error }) (*models.Answer, error) {
	var a models.Answer
	err := row.Scan(
		&a.ID,
		&a.QuestionID,
		&a.AuthorID,
		&a.Body,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new answer
func (r *AnswerRepository) Create(answer *models.Answer) error {
	query := `
		INSERT INTO answers (id, question_id, author_id, body, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	return r.q.QueryRow(
		query,
		answer.ID,
		answer.QuestionID,
		answer.AuthorID,
		answer.Body,
		answer.Status,
	).Scan(&answer.CreatedAt, &answer.UpdatedAt)
}

// GetByID retrieves an answer, returning nil when absent
func (r *AnswerRepository) GetByID(id uuid.UUID) (*models.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE id = $1`

	answer, err := scanAnswer(r.q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return answer, nil
}

// GetByQuestionAndAuthor retrieves an author's answer to a question, if any
func (r *AnswerRepository) GetByQuestionAndAuthor(questionID, authorID uuid.UUID) (*models.Answer, error) {
	query := `
		SELECT ` + answerColumns + `
		FROM answers
		WHERE question_id = $1 AND author_id = $2
	`

	answer, err := scanAnswer(r.q.QueryRow(query, questionID, authorID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return answer, nil
}

// ListByQuestion retrieves all answers to a question in submission order
func (r *AnswerRepository) ListByQuestion(questionID uuid.UUID) ([]models.Answer, error) {
	query := `
		SELECT ` + answerColumns + `
		FROM answers
		WHERE question_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.q.Query(query, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice instead of nil to avoid JSON null
	answers := []models.Answer{}
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, *answer)
	}

	return answers, rows.Err()
}

// UpdateStatus writes a new answer status
func (r *AnswerRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE answers SET status = $2, updated_at = NOW() WHERE id = $1`

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
