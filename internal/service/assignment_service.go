package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"answerhub/internal/config"
	"answerhub/internal/models"
	"answerhub/internal/repository"
)

// AssignmentService selects reviewers for answers and maintains their load counters
type AssignmentService struct {
	store repository.Store
	cfg   config.ReviewConfig
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(store repository.Store, cfg config.ReviewConfig) *AssignmentService {
	return &AssignmentService{store: store, cfg: cfg}
}

// AssignReviewers selects up to the configured number of reviewers for an
// answer and creates an assignment with its paired review record for each.
// Zero selected reviewers is a valid outcome, not an error.
func (s *AssignmentService) AssignReviewers(answerID uuid.UUID, priority string, requiredExpertise []string, excludeReviewerIDs []uuid.UUID) ([]models.Assignment, []models.Review, error) {
	if !ValidPriority(priority) {
		return nil, nil, validationError("priority", fmt.Sprintf("unknown priority %q", priority))
	}

	var assignments []models.Assignment
	var reviews []models.Review
	err := s.store.InTx(func(tx repository.Store) error {
		var txErr error
		assignments, reviews, txErr = s.assignIn(tx, answerID, priority, requiredExpertise, excludeReviewerIDs)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}

	return assignments, reviews, nil
}

// assignIn is the transactional core of reviewer assignment. Load increments
// go through the same transaction as the assignment writes, so concurrent
// submissions never observe stale capacity.
func (s *AssignmentService) assignIn(tx repository.Store, answerID uuid.UUID, priority string, requiredExpertise []string, excludeReviewerIDs []uuid.UUID) ([]models.Assignment, []models.Review, error) {
	candidates, err := tx.Reviewers().ListAvailable(excludeReviewerIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list available reviewers: %w", err)
	}

	if len(requiredExpertise) > 0 {
		filtered := filterByExpertise(candidates, requiredExpertise)
		if len(filtered) == 0 {
			// Degraded but not fatal: fall back to the unfiltered pool
			slog.Warn("No reviewers matched required expertise, falling back to unfiltered pool",
				"answer_id", answerID, "required_expertise", requiredExpertise)
		} else {
			candidates = filtered
		}
	}

	// Stable sort keeps repository order as the deterministic tie-break
	sort.SliceStable(candidates, func(i, j int) bool {
		return ScoreReviewer(&candidates[i], priority) > ScoreReviewer(&candidates[j], priority)
	})

	if len(candidates) > s.cfg.MaxReviewersPerAnswer {
		candidates = candidates[:s.cfg.MaxReviewersPerAnswer]
	}

	if len(candidates) == 0 {
		slog.Warn("No eligible reviewers for answer", "answer_id", answerID, "priority", priority)
	}

	now := time.Now().UTC()
	dueDate := now.Add(PriorityWindow(priority))

	assignments := []models.Assignment{}
	reviews := []models.Review{}
	for i := range candidates {
		reviewer := &candidates[i]

		assignment := models.Assignment{
			ID:         uuid.New(),
			AnswerID:   answerID,
			ReviewerID: reviewer.ID,
			Priority:   priority,
			Status:     models.AssignmentPending,
			AssignedAt: now,
			DueDate:    &dueDate,
		}
		if err := tx.Assignments().Create(&assignment); err != nil {
			return nil, nil, fmt.Errorf("failed to create assignment: %w", err)
		}

		review := models.Review{
			ID:         uuid.New(),
			AnswerID:   answerID,
			ReviewerID: reviewer.ID,
			Status:     models.ReviewAssigned,
			AssignedAt: now,
		}
		if err := tx.Reviews().Create(&review); err != nil {
			return nil, nil, fmt.Errorf("failed to create review record: %w", err)
		}

		if err := tx.Reviewers().AdjustLoad(reviewer.ID, 1); err != nil {
			return nil, nil, fmt.Errorf("failed to increment reviewer load: %w", err)
		}

		assignments = append(assignments, assignment)
		reviews = append(reviews, review)
	}

	return assignments, reviews, nil
}

func filterByExpertise(reviewers []models.ReviewerProfile, required []string) []models.ReviewerProfile {
	want := make(map[string]bool, len(required))
	for _, tag := range required {
		want[tag] = true
	}

	var matched []models.ReviewerProfile
	for _, r := range reviewers {
		for _, tag := range r.Expertise {
			if want[tag] {
				matched = append(matched, r)
				break
			}
		}
	}
	return matched
}

// UpdateAssignmentStatus writes a new assignment status. Transitions are not
// validated against the current status; completing an assignment releases the
// reviewer's load slot exactly once.
func (s *AssignmentService) UpdateAssignmentStatus(assignmentID uuid.UUID, status string) error {
	return s.store.InTx(func(tx repository.Store) error {
		assignment, err := tx.Assignments().GetByID(assignmentID)
		if err != nil {
			return fmt.Errorf("failed to get assignment: %w", err)
		}
		if assignment == nil {
			return ErrNotFound
		}

		return s.updateStatusIn(tx, assignment, status)
	})
}

func (s *AssignmentService) updateStatusIn(tx repository.Store, assignment *models.Assignment, status string) error {
	if err := tx.Assignments().UpdateStatus(assignment.ID, status); err != nil {
		return fmt.Errorf("failed to update assignment status: %w", err)
	}

	// Release the load slot only on the first transition into completed
	if status == models.AssignmentCompleted && assignment.Status != models.AssignmentCompleted {
		if err := tx.Reviewers().AdjustLoad(assignment.ReviewerID, -1); err != nil {
			return fmt.Errorf("failed to decrement reviewer load: %w", err)
		}
		if err := tx.Reviewers().IncrementReviewCount(assignment.ReviewerID); err != nil {
			return fmt.Errorf("failed to increment review count: %w", err)
		}
	}

	return nil
}

// RedistributeAssignments moves pending assignments away from overloaded
// reviewers, returning how many were moved. A reviewer is overloaded when
// their load exceeds the configured fraction of their capacity.
func (s *AssignmentService) RedistributeAssignments() (int, error) {
	moved := 0
	err := s.store.InTx(func(tx repository.Store) error {
		reviewers, err := tx.Reviewers().ListActive()
		if err != nil {
			return fmt.Errorf("failed to list active reviewers: %w", err)
		}

		for i := range reviewers {
			overloaded := &reviewers[i]
			if float64(overloaded.CurrentReviewLoad) <= s.cfg.OverloadFactor*float64(overloaded.MaxConcurrentReviews) {
				continue
			}

			pending, err := tx.Assignments().ListPendingByReviewer(overloaded.ID)
			if err != nil {
				return fmt.Errorf("failed to list pending assignments: %w", err)
			}

			for j := range pending {
				assignment := &pending[j]
				n, err := s.moveAssignmentIn(tx, assignment, overloaded.ID)
				if err != nil {
					return err
				}
				moved += n
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	if moved > 0 {
		slog.Info("Redistributed assignments from overloaded reviewers", "moved", moved)
	}

	return moved, nil
}

func (s *AssignmentService) moveAssignmentIn(tx repository.Store, assignment *models.Assignment, overloadedID uuid.UUID) (int, error) {
	// Never move an assignment to someone already reviewing the answer
	exclude, err := tx.Reviews().ReviewerIDsForAnswer(assignment.AnswerID)
	if err != nil {
		return 0, fmt.Errorf("failed to list prior reviewers: %w", err)
	}
	exclude = append(exclude, overloadedID)

	candidates, err := tx.Reviewers().ListAvailable(exclude)
	if err != nil {
		return 0, fmt.Errorf("failed to list available reviewers: %w", err)
	}
	if len(candidates) == 0 {
		slog.Warn("No alternative reviewer for redistribution", "assignment_id", assignment.ID)
		return 0, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return ScoreReviewer(&candidates[i], assignment.Priority) > ScoreReviewer(&candidates[j], assignment.Priority)
	})
	target := &candidates[0]

	now := time.Now().UTC()
	dueDate := now.Add(PriorityWindow(assignment.Priority))

	// The review moves first: when it has already been submitted or cancelled
	// there is nothing left to redistribute, so skip this assignment without
	// failing the rest of the sweep.
	if err := tx.Reviews().Reassign(assignment.AnswerID, assignment.ReviewerID, target.ID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Skipping redistribution for assignment without an open review",
				"assignment_id", assignment.ID)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to reassign review: %w", err)
	}
	if err := tx.Assignments().Reassign(assignment.ID, target.ID, now, &dueDate); err != nil {
		return 0, fmt.Errorf("failed to reassign assignment: %w", err)
	}
	if err := tx.Reviewers().AdjustLoad(assignment.ReviewerID, -1); err != nil {
		return 0, fmt.Errorf("failed to decrement overloaded reviewer load: %w", err)
	}
	if err := tx.Reviewers().AdjustLoad(target.ID, 1); err != nil {
		return 0, fmt.Errorf("failed to increment target reviewer load: %w", err)
	}

	slog.Info("Moved assignment to alternative reviewer",
		"assignment_id", assignment.ID, "from", assignment.ReviewerID, "to", target.ID)

	return 1, nil
}

// GetAssignmentByID retrieves a single assignment
func (s *AssignmentService) GetAssignmentByID(id uuid.UUID) (*models.Assignment, error) {
	assignment, err := s.store.Assignments().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return nil, ErrNotFound
	}
	return assignment, nil
}

// GetAssignmentsForReviewer retrieves all assignments held by a reviewer
func (s *AssignmentService) GetAssignmentsForReviewer(reviewerID uuid.UUID) ([]models.Assignment, error) {
	return s.store.Assignments().ListByReviewer(reviewerID)
}

// GetAssignmentsForAnswer retrieves all assignments for an answer
func (s *AssignmentService) GetAssignmentsForAnswer(answerID uuid.UUID) ([]models.Assignment, error) {
	return s.store.Assignments().ListByAnswer(answerID)
}
