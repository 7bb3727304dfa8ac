package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"answerhub/internal/models"
	"answerhub/internal/repository"
)

// ReviewSubmissionResult reports everything that happened when a review was
// submitted: the recorded review, the completed assignment if one matched,
// and the consensus step's outcome
type ReviewSubmissionResult struct {
	Review     models.Review      `json:"review"`
	Assignment *models.Assignment `json:"assignment,omitempty"`
	Consensus  ConsensusOutcome   `json:"consensus"`
}

// AnswerService coordinates the full submission flow: answers trigger
// reviewer assignment, review submissions trigger consensus evaluation
type AnswerService struct {
	store     repository.Store
	engine    *AssignmentService
	reviews   *ReviewService
	consensus *ConsensusService
}

// NewAnswerService creates a new answer service
func NewAnswerService(store repository.Store, engine *AssignmentService, reviews *ReviewService, consensus *ConsensusService) *AnswerService {
	return &AnswerService{
		store:     store,
		engine:    engine,
		reviews:   reviews,
		consensus: consensus,
	}
}

// SubmitAnswer persists a new answer and assigns its first review round.
// The answer is accepted even when no reviewers could be assigned; assignment
// failures are logged, never surfaced to the author.
func (s *AnswerService) SubmitAnswer(questionID, authorID uuid.UUID, body string) (*models.AnswerSubmissionResult, error) {
	if strings.TrimSpace(body) == "" {
		return nil, validationError("body", "answer body must not be empty")
	}

	var result *models.AnswerSubmissionResult
	err := s.store.InTx(func(tx repository.Store) error {
		question, err := tx.Questions().GetByID(questionID)
		if err != nil {
			return fmt.Errorf("failed to get question: %w", err)
		}
		if question == nil {
			return ErrNotFound
		}
		if question.Status != models.QuestionOpen {
			return ErrQuestionClosed
		}

		existing, err := tx.Answers().GetByQuestionAndAuthor(questionID, authorID)
		if err != nil {
			return fmt.Errorf("failed to check for existing answer: %w", err)
		}
		if existing != nil {
			return ErrDuplicateAnswer
		}

		answer := models.Answer{
			ID:         uuid.New(),
			QuestionID: questionID,
			AuthorID:   authorID,
			Body:       body,
			Status:     models.AnswerPendingReview,
		}
		if err := tx.Answers().Create(&answer); err != nil {
			return fmt.Errorf("failed to create answer: %w", err)
		}

		// Degraded mode: the answer stands even without reviewers. The
		// assignment attempt runs under a savepoint so a storage error there
		// cannot abort the rest of the transaction.
		assignments := []models.Assignment{}
		reviews := []models.Review{}
		if err := tx.InSavepoint(func(sp repository.Store) error {
			var spErr error
			assignments, reviews, spErr = s.engine.assignIn(sp, answer.ID, models.PriorityMedium, nil, nil)
			return spErr
		}); err != nil {
			slog.Warn("Failed to assign reviewers for new answer", "answer_id", answer.ID, "error", err)
			assignments = []models.Assignment{}
			reviews = []models.Review{}
		}

		if err := tx.Questions().IncrementAnswerCount(questionID); err != nil {
			return fmt.Errorf("failed to increment answer count: %w", err)
		}

		result = &models.AnswerSubmissionResult{
			Answer:      answer,
			Assignments: assignments,
			Reviews:     reviews,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Answer submitted", "answer_id", result.Answer.ID,
		"question_id", questionID, "reviewers_assigned", len(result.Assignments))

	return result, nil
}

// SubmitReview records a review, completes its matching assignment, and runs
// one consensus step, all in a single transaction
func (s *AnswerService) SubmitReview(reviewID uuid.UUID, score int, comments string, similarity *float64) (*ReviewSubmissionResult, error) {
	var result *ReviewSubmissionResult
	err := s.store.InTx(func(tx repository.Store) error {
		review, err := s.reviews.submitIn(tx, reviewID, score, comments, similarity)
		if err != nil {
			return err
		}

		assignment, err := tx.Assignments().GetByAnswerAndReviewer(review.AnswerID, review.ReviewerID)
		if err != nil {
			return fmt.Errorf("failed to get matching assignment: %w", err)
		}
		if assignment != nil && assignment.Status != models.AssignmentCompleted {
			if err := s.engine.updateStatusIn(tx, assignment, models.AssignmentCompleted); err != nil {
				return err
			}
			assignment.Status = models.AssignmentCompleted
		}

		outcome, err := s.consensus.evaluateIn(tx, review.AnswerID)
		if err != nil {
			return err
		}

		result = &ReviewSubmissionResult{
			Review:     *review,
			Assignment: assignment,
			Consensus:  *outcome,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Review submitted", "review_id", reviewID,
		"answer_id", result.Review.AnswerID, "decision", result.Consensus.Decision)

	return result, nil
}

// CreateQuestion persists a new open question
func (s *AnswerService) CreateQuestion(authorID uuid.UUID, title, body string) (*models.Question, error) {
	if strings.TrimSpace(title) == "" {
		return nil, validationError("title", "question title must not be empty")
	}
	if strings.TrimSpace(body) == "" {
		return nil, validationError("body", "question body must not be empty")
	}

	question := &models.Question{
		ID:       uuid.New(),
		AuthorID: authorID,
		Title:    title,
		Body:     body,
		Status:   models.QuestionOpen,
	}
	if err := s.store.Questions().Create(question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	return question, nil
}

// GetQuestionByID retrieves a question
func (s *AnswerService) GetQuestionByID(id uuid.UUID) (*models.Question, error) {
	question, err := s.store.Questions().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return nil, ErrNotFound
	}
	return question, nil
}

// GetAnswerByID retrieves an answer
func (s *AnswerService) GetAnswerByID(id uuid.UUID) (*models.Answer, error) {
	answer, err := s.store.Answers().GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}
	if answer == nil {
		return nil, ErrNotFound
	}
	return answer, nil
}

// GetAnswersForQuestion retrieves all answers to a question
func (s *AnswerService) GetAnswersForQuestion(questionID uuid.UUID) ([]models.Answer, error) {
	return s.store.Answers().ListByQuestion(questionID)
}
