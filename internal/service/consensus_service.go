package service

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"answerhub/internal/models"
	"answerhub/internal/repository"
)

// Consensus decisions for an answer's current review round
const (
	DecisionAwaitingReviews = "awaiting_reviews"
	DecisionNeedsNextRound  = "needs_next_round"
	DecisionThresholdMet    = "threshold_met"
)

// ConsensusOutcome reports the decision for an answer after a review
// submission, including any assignments created for a next round
type ConsensusOutcome struct {
	Decision    string              `json:"decision"`
	Stats       models.ReviewStats  `json:"stats"`
	Assignments []models.Assignment `json:"assignments"`
	Reviews     []models.Review     `json:"reviews"`
}

// ConsensusService decides, from the review ledger, whether an answer has
// reached consensus or needs another assignment round
type ConsensusService struct {
	store  repository.Store
	engine *AssignmentService
}

// NewConsensusService creates a new consensus service
func NewConsensusService(store repository.Store, engine *AssignmentService) *ConsensusService {
	return &ConsensusService{store: store, engine: engine}
}

// EvaluateAnswer runs one consensus step for an answer
func (s *ConsensusService) EvaluateAnswer(answerID uuid.UUID) (*ConsensusOutcome, error) {
	var outcome *ConsensusOutcome
	err := s.store.InTx(func(tx repository.Store) error {
		var txErr error
		outcome, txErr = s.evaluateIn(tx, answerID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// evaluateIn applies the round-completion rule: with at least 2 submitted
// reviews and the threshold reached, a next round is triggered excluding
// everyone who has ever reviewed the answer. When that exclusion empties the
// reviewer pool, no further round is possible and the answer is accepted.
func (s *ConsensusService) evaluateIn(tx repository.Store, answerID uuid.UUID) (*ConsensusOutcome, error) {
	stats, err := statsIn(tx, answerID)
	if err != nil {
		return nil, err
	}

	outcome := &ConsensusOutcome{
		Decision:    DecisionAwaitingReviews,
		Stats:       *stats,
		Assignments: []models.Assignment{},
		Reviews:     []models.Review{},
	}

	if stats.CompletedReviews < 2 || !stats.ThresholdReached {
		return outcome, nil
	}

	exclude, err := tx.Reviews().ReviewerIDsForAnswer(answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prior reviewers: %w", err)
	}

	// Assignment failures never propagate to the submitting reviewer; the
	// savepoint keeps a failed attempt from aborting the enclosing transaction
	var assignments []models.Assignment
	var reviews []models.Review
	if err := tx.InSavepoint(func(sp repository.Store) error {
		var spErr error
		assignments, reviews, spErr = s.engine.assignIn(sp, answerID, s.roundPriority(sp, answerID), nil, exclude)
		return spErr
	}); err != nil {
		slog.Warn("Failed to assign next review round", "answer_id", answerID, "error", err)
		outcome.Decision = DecisionNeedsNextRound
		return outcome, nil
	}

	if len(assignments) == 0 {
		// Every eligible reviewer has already weighed in; accept the answer
		if err := s.acceptAnswerIn(tx, answerID); err != nil {
			return nil, err
		}
		outcome.Decision = DecisionThresholdMet
		return outcome, nil
	}

	outcome.Decision = DecisionNeedsNextRound
	outcome.Assignments = assignments
	outcome.Reviews = reviews

	return outcome, nil
}

// roundPriority carries the answer's existing priority into the next round,
// defaulting to medium when no prior assignment exists
func (s *ConsensusService) roundPriority(tx repository.Store, answerID uuid.UUID) string {
	assignments, err := tx.Assignments().ListByAnswer(answerID)
	if err != nil || len(assignments) == 0 {
		return models.PriorityMedium
	}
	return assignments[len(assignments)-1].Priority
}

func (s *ConsensusService) acceptAnswerIn(tx repository.Store, answerID uuid.UUID) error {
	answer, err := tx.Answers().GetByID(answerID)
	if err != nil {
		return fmt.Errorf("failed to get answer: %w", err)
	}
	if answer == nil {
		return ErrNotFound
	}

	if err := tx.Answers().UpdateStatus(answerID, models.AnswerAccepted); err != nil {
		return fmt.Errorf("failed to accept answer: %w", err)
	}
	if err := tx.Questions().UpdateStatus(answer.QuestionID, models.QuestionAnswered); err != nil {
		return fmt.Errorf("failed to mark question answered: %w", err)
	}

	slog.Info("Answer accepted by consensus", "answer_id", answerID, "question_id", answer.QuestionID)

	return nil
}
