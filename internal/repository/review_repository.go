package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"answerhub/internal/models"
)

// ReviewStore is the review ledger persistence interface consumed by the services
type ReviewStore interface {
	Create(review *models.Review) error
	GetByID(id uuid.UUID) (*models.Review, error)
	Submit(id uuid.UUID, score int, comments string, similarity *float64, submittedAt time.Time) error
	ListByAnswer(answerID uuid.UUID) ([]models.Review, error)
	ListPendingByReviewer(reviewerID uuid.UUID) ([]models.Review, error)
	ReviewerIDsForAnswer(answerID uuid.UUID) ([]uuid.UUID, error)
	StatsForAnswer(answerID uuid.UUID) (total, completed int, averageScore float64, err error)
	MarkOverdue(now time.Time) (int64, error)
	Reassign(answerID, oldReviewerID, newReviewerID uuid.UUID, assignedAt time.Time) error
}

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	q DBTX
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(q DBTX) *ReviewRepository {
	return &ReviewRepository{q: q}
}

const reviewColumns = `
	id, answer_id, reviewer_id, score, similarity, status, comments,
	assigned_at, submitted_at, created_at, updated_at
`

func scanReview(row interface{ Scan(...any) error }) (*models.Review, error) {
	var rv models.Review
	err := row.Scan(
		&rv.ID,
		&rv.AnswerID,
		&rv.ReviewerID,
		&rv.Score,
		&rv.Similarity,
		&rv.Status,
		&rv.Comments,
		&rv.AssignedAt,
		&rv.SubmittedAt,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// Create inserts a new review record
func (r *ReviewRepository) Create(review *models.Review) error {
	query := `
		INSERT INTO reviews (id, answer_id, reviewer_id, status, comments, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	return r.q.QueryRow(
		query,
		review.ID,
		review.AnswerID,
		review.ReviewerID,
		review.Status,
		review.Comments,
		review.AssignedAt,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
}

// GetByID retrieves a review, returning nil when absent
func (r *ReviewRepository) GetByID(id uuid.UUID) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return review, nil
}

// Submit records a submitted review with its score and optional similarity
func (r *ReviewRepository) Submit(id uuid.UUID, score int, comments string, similarity *float64, submittedAt time.Time) error {
	query := `
		UPDATE reviews
		SET score = $2, comments = $3, similarity = $4, status = 'submitted',
		    submitted_at = $5, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(query, id, score, comments, similarity, submittedAt)
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

// ListByAnswer retrieves all reviews for an answer
func (r *ReviewRepository) ListByAnswer(answerID uuid.UUID) ([]models.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE answer_id = $1
		ORDER BY assigned_at, id
	`

	return r.listReviews(query, answerID)
}

// ListPendingByReviewer retrieves a reviewer's not-yet-submitted reviews
func (r *ReviewRepository) ListPendingByReviewer(reviewerID uuid.UUID) ([]models.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE reviewer_id = $1 AND status IN ('assigned', 'in_progress')
		ORDER BY assigned_at, id
	`

	return r.listReviews(query, reviewerID)
}

func (r *ReviewRepository) listReviews(query string, args ...any) ([]models.Review, error) {
	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice instead of nil to avoid JSON null
	reviews := []models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}

	return reviews, rows.Err()
}

// ReviewerIDsForAnswer returns every reviewer who has ever held a review for
// the answer, used to exclude them from later rounds
func (r *ReviewRepository) ReviewerIDsForAnswer(answerID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT reviewer_id FROM reviews WHERE answer_id = $1`

	rows, err := r.q.Query(query, answerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// StatsForAnswer aggregates review counts and the mean submitted score.
// Completed means status submitted with a recorded score.
func (r *ReviewRepository) StatsForAnswer(answerID uuid.UUID) (int, int, float64, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'submitted' AND score IS NOT NULL),
			COALESCE(AVG(score) FILTER (WHERE status = 'submitted' AND score IS NOT NULL), 0)
		FROM reviews
		WHERE answer_id = $1
	`

	var total, completed int
	var average float64
	err := r.q.QueryRow(query, answerID).Scan(&total, &completed, &average)
	if err != nil {
		return 0, 0, 0, err
	}

	return total, completed, average, nil
}

// Reassign moves an answer's unsubmitted review from one reviewer to another,
// keeping it paired with its reassigned assignment. Overdue reviews reopen as
// assigned for the new reviewer.
func (r *ReviewRepository) Reassign(answerID, oldReviewerID, newReviewerID uuid.UUID, assignedAt time.Time) error {
	query := `
		UPDATE reviews
		SET reviewer_id = $3, assigned_at = $4, status = 'assigned', updated_at = NOW()
		WHERE answer_id = $1 AND reviewer_id = $2 AND status IN ('assigned', 'in_progress', 'overdue')
	`

	result, err := r.q.Exec(query, answerID, oldReviewerID, newReviewerID, assignedAt)
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

// MarkOverdue flips open reviews whose assignment due date has passed to
// overdue, returning how many were affected
func (r *ReviewRepository) MarkOverdue(now time.Time) (int64, error) {
	query := `
		UPDATE reviews rv
		SET status = 'overdue', updated_at = NOW()
		FROM assignments a
		WHERE a.answer_id = rv.answer_id
		  AND a.reviewer_id = rv.reviewer_id
		  AND rv.status IN ('assigned', 'in_progress')
		  AND a.status IN ('pending', 'accepted')
		  AND a.due_date IS NOT NULL
		  AND a.due_date < $1
	`

	result, err := r.q.Exec(query, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
