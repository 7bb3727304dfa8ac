package service

import (
	"time"

	"answerhub/internal/models"
)

// Due-date windows per priority. Unrecognized priorities fall back to the
// medium window.
const (
	windowUrgent = 24 * time.Hour
	windowHigh   = 3 * 24 * time.Hour
	windowMedium = 7 * 24 * time.Hour
	windowLow    = 14 * 24 * time.Hour
)

// ScoreReviewer computes a reviewer's suitability for a review at the given
// priority. The result is unbounded and only meaningful for relative ordering
// (higher is better):
//
//	availability: (1 - load/max) * 30
//	rating:       averageRating * 20
//	experience:   min(reviewCount/10, 20)
//	priority:     +10 for high or urgent
func ScoreReviewer(reviewer *models.ReviewerProfile, priority string) float64 {
	var availability float64
	if reviewer.MaxConcurrentReviews > 0 {
		availability = (1 - float64(reviewer.CurrentReviewLoad)/float64(reviewer.MaxConcurrentReviews)) * 30
	}

	rating := reviewer.AverageRating * 20

	experience := float64(reviewer.ReviewCount) / 10
	if experience > 20 {
		experience = 20
	}

	score := availability + rating + experience
	if priority == models.PriorityHigh || priority == models.PriorityUrgent {
		score += 10
	}

	return score
}

// PriorityWindow returns the review window granted for a priority
func PriorityWindow(priority string) time.Duration {
	switch priority {
	case models.PriorityUrgent:
		return windowUrgent
	case models.PriorityHigh:
		return windowHigh
	case models.PriorityLow:
		return windowLow
	default:
		return windowMedium
	}
}

// ValidPriority reports whether priority is one of the recognized levels
func ValidPriority(priority string) bool {
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}
