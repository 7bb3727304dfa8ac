package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"answerhub/internal/models"
	"answerhub/internal/repository"
)

// ReviewerService manages the reviewer directory
type ReviewerService struct {
	store repository.Store
}

// NewReviewerService creates a new reviewer service
func NewReviewerService(store repository.Store) *ReviewerService {
	return &ReviewerService{store: store}
}

// CreateReviewer registers a reviewer profile for a user
func (s *ReviewerService) CreateReviewer(userID uuid.UUID, displayName string, expertise []string, maxConcurrentReviews int) (*models.ReviewerProfile, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, validationError("display_name", "display name must not be empty")
	}
	if maxConcurrentReviews < 1 {
		return nil, validationError("max_concurrent_reviews", "max concurrent reviews must be at least 1")
	}

	if expertise == nil {
		expertise = []string{}
	}

	profile := &models.ReviewerProfile{
		ID:                   uuid.New(),
		UserID:               userID,
		DisplayName:          displayName,
		Expertise:            expertise,
		IsActive:             true,
		MaxConcurrentReviews: maxConcurrentReviews,
	}
	if err := s.store.Reviewers().Create(profile); err != nil {
		return nil, fmt.Errorf("failed to create reviewer profile: %w", err)
	}

	return profile, nil
}

// GetReviewerByID retrieves a reviewer profile
func (s *ReviewerService) GetReviewerByID(id uuid.UUID) (*models.ReviewerProfile, error) {
	profile, err := s.store.Reviewers().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviewer profile: %w", err)
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

// ListActiveReviewers retrieves all active reviewer profiles
func (s *ReviewerService) ListActiveReviewers() ([]models.ReviewerProfile, error) {
	return s.store.Reviewers().ListActive()
}

// SetReviewerActive flips a reviewer's active flag
func (s *ReviewerService) SetReviewerActive(id uuid.UUID, active bool) error {
	err := s.store.Reviewers().SetActive(id, active)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update reviewer: %w", err)
	}
	return nil
}
