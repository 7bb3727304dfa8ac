package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"answerhub/internal/models"
)

// BlindStore is the blind-review persistence interface consumed by the services
type BlindStore interface {
	CreateAssignment(assignment *models.BlindAssignment) error
	GetAssignment(reviewerID, questionID uuid.UUID) (*models.BlindAssignment, error)
	UpdateAssignmentStatus(id uuid.UUID, status string) error
	CreateRanking(ranking *models.AnswerRanking) error
	ListCompletedRankings(questionID uuid.UUID) ([]models.AnswerRanking, error)
}

// BlindReviewRepository handles database operations for blind assignments and rankings
type BlindReviewRepository struct {
	q DBTX
}

// NewBlindReviewRepository creates a new blind review repository
func NewBlindReviewRepository(q DBTX) *BlindReviewRepository {
	return &BlindReviewRepository{q: q}
}

// CreateAssignment inserts a blind assignment with its anonymized items
func (r *BlindReviewRepository) CreateAssignment(assignment *models.BlindAssignment) error {
	query := `
		INSERT INTO blind_assignments (id, reviewer_id, question_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(
		query,
		assignment.ID,
		assignment.ReviewerID,
		assignment.QuestionID,
		assignment.Status,
	).Scan(&assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO blind_assignment_items (id, assignment_id, anonymous_id, real_answer_id, author_id, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range assignment.Items {
		item := &assignment.Items[i]
		if _, err := r.q.Exec(itemQuery, item.ID, item.AssignmentID, item.AnonymousID, item.RealAnswerID, item.AuthorID, item.Position); err != nil {
			return err
		}
	}

	return nil
}

// GetAssignment retrieves a reviewer's blind assignment for a question with
// its items in label order, returning nil when absent
func (r *BlindReviewRepository) GetAssignment(reviewerID, questionID uuid.UUID) (*models.BlindAssignment, error) {
	query := `
		SELECT id, reviewer_id, question_id, status, created_at, updated_at
		FROM blind_assignments
		WHERE reviewer_id = $1 AND question_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var a models.BlindAssignment
	err := r.q.QueryRow(query, reviewerID, questionID).Scan(
		&a.ID,
		&a.ReviewerID,
		&a.QuestionID,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.assignmentItems(a.ID)
	if err != nil {
		return nil, err
	}
	a.Items = items

	return &a, nil
}

func (r *BlindReviewRepository) assignmentItems(assignmentID uuid.UUID) ([]models.BlindAssignmentItem, error) {
	query := `
		SELECT id, assignment_id, anonymous_id, real_answer_id, author_id, position
		FROM blind_assignment_items
		WHERE assignment_id = $1
		ORDER BY position
	`

	rows, err := r.q.Query(query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice instead of nil to avoid JSON null
	items := []models.BlindAssignmentItem{}
	for rows.Next() {
		var item models.BlindAssignmentItem
		err := rows.Scan(
			&item.ID,
			&item.AssignmentID,
			&item.AnonymousID,
			&item.RealAnswerID,
			&item.AuthorID,
			&item.Position,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateAssignmentStatus writes a new blind assignment status
func (r *BlindReviewRepository) UpdateAssignmentStatus(id uuid.UUID, status string) error {
	query := `UPDATE blind_assignments SET status = $2, updated_at = NOW() WHERE id = $1`

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

// CreateRanking inserts an answer ranking with its ranked items
func (r *BlindReviewRepository) CreateRanking(ranking *models.AnswerRanking) error {
	query := `
		INSERT INTO answer_rankings (id, reviewer_id, question_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(
		query,
		ranking.ID,
		ranking.ReviewerID,
		ranking.QuestionID,
		ranking.Status,
	).Scan(&ranking.CreatedAt)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO answer_ranking_items (id, ranking_id, answer_id, anonymous_id, rank, borda_points)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range ranking.Items {
		item := &ranking.Items[i]
		if _, err := r.q.Exec(itemQuery, item.ID, item.RankingID, item.AnswerID, item.AnonymousID, item.Rank, item.BordaPoints); err != nil {
			return err
		}
	}

	return nil
}

// ListCompletedRankings retrieves all completed rankings for a question with
// their items
func (r *BlindReviewRepository) ListCompletedRankings(questionID uuid.UUID) ([]models.AnswerRanking, error) {
	query := `
		SELECT id, reviewer_id, question_id, status, created_at
		FROM answer_rankings
		WHERE question_id = $1 AND status = 'completed'
		ORDER BY created_at, id
	`

	rows, err := r.q.Query(query, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice instead of nil to avoid JSON null
	rankings := []models.AnswerRanking{}
	for rows.Next() {
		var ranking models.AnswerRanking
		err := rows.Scan(
			&ranking.ID,
			&ranking.ReviewerID,
			&ranking.QuestionID,
			&ranking.Status,
			&ranking.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rankings = append(rankings, ranking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rankings {
		items, err := r.rankingItems(rankings[i].ID)
		if err != nil {
			return nil, err
		}
		rankings[i].Items = items
	}

	return rankings, nil
}

func (r *BlindReviewRepository) rankingItems(rankingID uuid.UUID) ([]models.AnswerRankingItem, error) {
	query := `
		SELECT id, ranking_id, answer_id, anonymous_id, rank, borda_points
		FROM answer_ranking_items
		WHERE ranking_id = $1
		ORDER BY rank
	`

	rows, err := r.q.Query(query, rankingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.AnswerRankingItem{}
	for rows.Next() {
		var item models.AnswerRankingItem
		err := rows.Scan(
			&item.ID,
			&item.RankingID,
			&item.AnswerID,
			&item.AnonymousID,
			&item.Rank,
			&item.BordaPoints,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
