package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"answerhub/internal/models"
	"answerhub/internal/repository"
)

// Consensus threshold for the non-blind path: mean score of at least 3.5
// across at least 3 submitted reviews.
const (
	thresholdAverage   = 3.5
	thresholdCompleted = 3
)

// ReviewService is the ledger of review records and their lifecycle
type ReviewService struct {
	store repository.Store
}

// NewReviewService creates a new review service
func NewReviewService(store repository.Store) *ReviewService {
	return &ReviewService{store: store}
}

// CreateReview opens a review record for a reviewer on an answer
func (s *ReviewService) CreateReview(answerID, reviewerID uuid.UUID) (*models.Review, error) {
	answer, err := s.store.Answers().GetByID(answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	if answer == nil {
		return nil, ErrNotFound
	}

	review := &models.Review{
		ID:         uuid.New(),
		AnswerID:   answerID,
		ReviewerID: reviewerID,
		Status:     models.ReviewAssigned,
		AssignedAt: time.Now().UTC(),
	}
	if err := s.store.Reviews().Create(review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

// SubmitReview records a reviewer's score for their review. Validation
// happens before any write.
func (s *ReviewService) SubmitReview(reviewID uuid.UUID, score int, comments string, similarity *float64) (*models.Review, error) {
	var review *models.Review
	err := s.store.InTx(func(tx repository.Store) error {
		var txErr error
		review, txErr = s.submitIn(tx, reviewID, score, comments, similarity)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return review, nil
}

func (s *ReviewService) submitIn(tx repository.Store, reviewID uuid.UUID, score int, comments string, similarity *float64) (*models.Review, error) {
	if score < 1 || score > 5 {
		return nil, validationError("score", "score must be between 1 and 5")
	}
	if similarity != nil && (*similarity < 0 || *similarity > 1) {
		return nil, validationError("similarity", "similarity must be between 0 and 1")
	}

	review, err := tx.Reviews().GetByID(reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return nil, ErrNotFound
	}
	if review.Status == models.ReviewSubmitted {
		return nil, validationError("status", "review has already been submitted")
	}
	if review.Status == models.ReviewCancelled {
		return nil, validationError("status", "review has been cancelled")
	}

	now := time.Now().UTC()
	if err := tx.Reviews().Submit(reviewID, score, comments, similarity, now); err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}

	review.Score = &score
	review.Comments = comments
	review.Similarity = similarity
	review.Status = models.ReviewSubmitted
	review.SubmittedAt = &now

	return review, nil
}

// GetReviewStatsForAnswer aggregates submitted reviews for an answer and
// evaluates the consensus threshold
func (s *ReviewService) GetReviewStatsForAnswer(answerID uuid.UUID) (*models.ReviewStats, error) {
	return statsIn(s.store, answerID)
}

func statsIn(tx repository.Store, answerID uuid.UUID) (*models.ReviewStats, error) {
	total, completed, average, err := tx.Reviews().StatsForAnswer(answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate review stats: %w", err)
	}

	return &models.ReviewStats{
		TotalReviews:     total,
		CompletedReviews: completed,
		AverageScore:     average,
		ThresholdReached: average >= thresholdAverage && completed >= thresholdCompleted,
	}, nil
}

// GetPendingReviewsForReviewer retrieves a reviewer's open reviews
func (s *ReviewService) GetPendingReviewsForReviewer(reviewerID uuid.UUID) ([]models.Review, error) {
	return s.store.Reviews().ListPendingByReviewer(reviewerID)
}

// GetReviewByID retrieves a single review
func (s *ReviewService) GetReviewByID(id uuid.UUID) (*models.Review, error) {
	review, err := s.store.Reviews().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return nil, ErrNotFound
	}
	return review, nil
}

// GetReviewsForAnswer retrieves all reviews for an answer
func (s *ReviewService) GetReviewsForAnswer(answerID uuid.UUID) ([]models.Review, error) {
	return s.store.Reviews().ListByAnswer(answerID)
}

// MarkOverdueReviews flips open reviews past their due date to overdue,
// returning how many were affected. Invoked by the maintenance scheduler.
func (s *ReviewService) MarkOverdueReviews() (int64, error) {
	return s.store.Reviews().MarkOverdue(time.Now().UTC())
}
