package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"answerhub/internal/models"
)

// AssignmentStore is the assignment persistence interface consumed by the services
type AssignmentStore interface {
	Create(assignment *models.Assignment) error
	GetByID(id uuid.UUID) (*models.Assignment, error)
	GetByAnswerAndReviewer(answerID, reviewerID uuid.UUID) (*models.Assignment, error)
	ListByAnswer(answerID uuid.UUID) ([]models.Assignment, error)
	ListByReviewer(reviewerID uuid.UUID) ([]models.Assignment, error)
	ListPendingByReviewer(reviewerID uuid.UUID) ([]models.Assignment, error)
	UpdateStatus(id uuid.UUID, status string) error
	Reassign(id, newReviewerID uuid.UUID, assignedAt time.Time, dueDate *time.Time) error
}

// AssignmentRepository handles database operations for assignments
type AssignmentRepository struct {
	q DBTX
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(q DBTX) *AssignmentRepository {
	return &AssignmentRepository{q: q}
}

const assignmentColumns = `
	id, answer_id, reviewer_id, priority, status, assigned_at, due_date, created_at, updated_at
`

func scanAssignment(row interface{ Scan(...any) error }) (*models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(
		&a.ID,
		&a.AnswerID,
		&a.ReviewerID,
		&a.Priority,
		&a.Status,
		&a.AssignedAt,
		&a.DueDate,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new assignment
func (r *AssignmentRepository) Create(assignment *models.Assignment) error {
	query := `
		INSERT INTO assignments (id, answer_id, reviewer_id, priority, status, assigned_at, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	return r.q.QueryRow(
		query,
		assignment.ID,
		assignment.AnswerID,
		assignment.ReviewerID,
		assignment.Priority,
		assignment.Status,
		assignment.AssignedAt,
		assignment.DueDate,
	).Scan(&assignment.CreatedAt, &assignment.UpdatedAt)
}

// GetByID retrieves an assignment, returning nil when absent
func (r *AssignmentRepository) GetByID(id uuid.UUID) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`

	assignment, err := scanAssignment(r.q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

// GetByAnswerAndReviewer retrieves the assignment pairing a reviewer with an answer
func (r *AssignmentRepository) GetByAnswerAndReviewer(answerID, reviewerID uuid.UUID) (*models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE answer_id = $1 AND reviewer_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	assignment, err := scanAssignment(r.q.QueryRow(query, answerID, reviewerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

// ListByAnswer retrieves all assignments for an answer
func (r *AssignmentRepository) ListByAnswer(answerID uuid.UUID) ([]models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE answer_id = $1
		ORDER BY assigned_at, id
	`

	return r.listAssignments(query, answerID)
}

// ListByReviewer retrieves all assignments for a reviewer
func (r *AssignmentRepository) ListByReviewer(reviewerID uuid.UUID) ([]models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE reviewer_id = $1
		ORDER BY assigned_at DESC, id
	`

	return r.listAssignments(query, reviewerID)
}

// ListPendingByReviewer retrieves a reviewer's pending assignments
func (r *AssignmentRepository) ListPendingByReviewer(reviewerID uuid.UUID) ([]models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE reviewer_id = $1 AND status = 'pending'
		ORDER BY assigned_at, id
	`

	return r.listAssignments(query, reviewerID)
}

func (r *AssignmentRepository) listAssignments(query string, args ...any) ([]models.Assignment, error) {
	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice instead of nil to avoid JSON null
	assignments := []models.Assignment{}
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *assignment)
	}

	return assignments, rows.Err()
}

// UpdateStatus writes a new status; transition legality is not checked here
func (r *AssignmentRepository) UpdateStatus(id uuid.UUID, status string) error {
	query := `UPDATE assignments SET status = $2, updated_at = NOW() WHERE id = $1`

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

// Reassign moves an assignment to another reviewer, resetting its clock.
// This is the one place where the due date is recomputed.
func (r *AssignmentRepository) Reassign(id, newReviewerID uuid.UUID, assignedAt time.Time, dueDate *time.Time) error {
	query := `
		UPDATE assignments
		SET reviewer_id = $2, assigned_at = $3, due_date = $4, status = 'pending', updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(query, id, newReviewerID, assignedAt, dueDate)
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
