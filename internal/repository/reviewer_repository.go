package repository

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"answerhub/internal/models"
)

// ReviewerStore is the reviewer directory interface consumed by the services
type ReviewerStore interface {
	Create(profile *models.ReviewerProfile) error
	GetByID(id uuid.UUID) (*models.ReviewerProfile, error)
	ListActive() ([]models.ReviewerProfile, error)
	ListAvailable(excludeIDs []uuid.UUID) ([]models.ReviewerProfile, error)
	AdjustLoad(id uuid.UUID, delta int) error
	IncrementReviewCount(id uuid.UUID) error
	SetActive(id uuid.UUID, active bool) error
}

// ReviewerRepository handles database operations for reviewer profiles
type ReviewerRepository struct {
	q DBTX
}

// NewReviewerRepository creates a new reviewer repository
func NewReviewerRepository(q DBTX) *ReviewerRepository {
	return &ReviewerRepository{q: q}
}

const reviewerColumns = `
	id, user_id, display_name, expertise, review_count, average_rating,
	is_active, max_concurrent_reviews, current_review_load, created_at, updated_at
`

func scanReviewer(row interface{ Scan(...any) error }) (*models.ReviewerProfile, error) {
	var p models.ReviewerProfile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.DisplayName,
		pq.Array(&p.Expertise),
		&p.ReviewCount,
		&p.AverageRating,
		&p.IsActive,
		&p.MaxConcurrentReviews,
		&p.CurrentReviewLoad,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new reviewer profile
func (r *ReviewerRepository) Create(profile *models.ReviewerProfile) error {
	query := `
		INSERT INTO reviewer_profiles (
			id, user_id, display_name, expertise, average_rating,
			is_active, max_concurrent_reviews
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING review_count, current_review_load, created_at, updated_at
	`

	return r.q.QueryRow(
		query,
		profile.ID,
		profile.UserID,
		profile.DisplayName,
		pq.Array(profile.Expertise),
		profile.AverageRating,
		profile.IsActive,
		profile.MaxConcurrentReviews,
	).Scan(&profile.ReviewCount, &profile.CurrentReviewLoad, &profile.CreatedAt, &profile.UpdatedAt)
}

// GetByID retrieves a reviewer profile, returning nil when absent
func (r *ReviewerRepository) GetByID(id uuid.UUID) (*models.ReviewerProfile, error) {
	query := `SELECT ` + reviewerColumns + ` FROM reviewer_profiles WHERE id = $1`

	profile, err := scanReviewer(r.q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// ListActive retrieves all active reviewer profiles in stable creation order
func (r *ReviewerRepository) ListActive() ([]models.ReviewerProfile, error) {
	query := `
		SELECT ` + reviewerColumns + `
		FROM reviewer_profiles
		WHERE is_active = TRUE
		ORDER BY created_at, id
	`

	return r.listReviewers(query)
}

// ListAvailable retrieves active reviewers with spare capacity, minus the
// excluded ids, in stable creation order
func (r *ReviewerRepository) ListAvailable(excludeIDs []uuid.UUID) ([]models.ReviewerProfile, error) {
	exclude := make([]string, 0, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude = append(exclude, id.String())
	}

	query := `
		SELECT ` + reviewerColumns + `
		FROM reviewer_profiles
		WHERE is_active = TRUE
		  AND current_review_load < max_concurrent_reviews
		  AND id <> ALL($1::uuid[])
		ORDER BY created_at, id
	`

	return r.listReviewers(query, pq.Array(exclude))
}

func (r *ReviewerRepository) listReviewers(query string, args ...any) ([]models.ReviewerProfile, error) {
	rows, err := r.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Initialize with empty slice instead of nil to avoid JSON null
	profiles := []models.ReviewerProfile{}
	for rows.Next() {
		profile, err := scanReviewer(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}

	return profiles, rows.Err()
}

// AdjustLoad changes a reviewer's current load by delta, floored at 0
func (r *ReviewerRepository) AdjustLoad(id uuid.UUID, delta int) error {
	query := `
		UPDATE reviewer_profiles
		SET current_review_load = GREATEST(current_review_load + $2, 0),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.q.Exec(query, id, delta)
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

// IncrementReviewCount bumps a reviewer's lifetime review count
func (r *ReviewerRepository) IncrementReviewCount(id uuid.UUID) error {
	query := `
		UPDATE reviewer_profiles
		SET review_count = review_count + 1, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.q.Exec(query, id)
	return err
}

// SetActive updates a reviewer's active flag
func (r *ReviewerRepository) SetActive(id uuid.UUID, active bool) error {
	query := `UPDATE reviewer_profiles SET is_active = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.q.Exec(query, id, active)
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
