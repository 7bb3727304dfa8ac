package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"answerhub/internal/models"
)

func newOrchestration(store *fakeStore) (*AnswerService, *AssignmentService) {
	engine := NewAssignmentService(store, testReviewConfig())
	reviews := NewReviewService(store)
	consensus := NewConsensusService(store, engine)
	return NewAnswerService(store, engine, reviews, consensus), engine
}

func TestSubmitAnswerAssignsFirstRound(t *testing.T) {
	store := newFakeStore()
	svc, _ := newOrchestration(store)

	addReviewer(store, 4.0, 10, 0, 5)
	addReviewer(store, 4.0, 10, 0, 5)
	question := addQuestion(store, models.QuestionOpen)

	result, err := svc.SubmitAnswer(question.ID, uuid.New(), "an answer")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	if result.Answer.Status != models.AnswerPendingReview {
		t.Errorf("Expected pending_review status, got %q", result.Answer.Status)
	}
	if len(result.Assignments) != 2 {
		t.Errorf("Expected 2 assignments, got %d", len(result.Assignments))
	}
	if len(result.Reviews) != 2 {
		t.Errorf("Expected 2 review records, got %d", len(result.Reviews))
	}

	stored, err := store.Questions().GetByID(question.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.AnswerCount != 1 {
		t.Errorf("Expected answer count 1, got %d", stored.AnswerCount)
	}
}

func TestSubmitAnswerNoReviewers(t *testing.T) {
	store := newFakeStore()
	svc, _ := newOrchestration(store)

	question := addQuestion(store, models.QuestionOpen)

	// An empty reviewer pool degrades the flow but never rejects the answer
	result, err := svc.SubmitAnswer(question.ID, uuid.New(), "an answer")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if result.Assignments == nil || len(result.Assignments) != 0 {
		t.Errorf("Expected empty assignments, got %v", result.Assignments)
	}
}

func TestSubmitAnswerAssignmentErrorSwallowed(t *testing.T) {
	base := newFakeStore()
	store := &failingAssignStore{fakeStore: base}
	engine := NewAssignmentService(store, testReviewConfig())
	reviews := NewReviewService(store)
	consensus := NewConsensusService(store, engine)
	svc := NewAnswerService(store, engine, reviews, consensus)

	addReviewer(base, 4.0, 10, 0, 5)
	question := addQuestion(base, models.QuestionOpen)

	// A storage failure during reviewer assignment degrades the submission
	// instead of rejecting it
	result, err := svc.SubmitAnswer(question.ID, uuid.New(), "an answer")
	if err != nil {
		t.Fatalf("Expected the assignment failure to be swallowed, got %v", err)
	}
	if result.Assignments == nil || len(result.Assignments) != 0 {
		t.Errorf("Expected empty assignments, got %v", result.Assignments)
	}
	if result.Reviews == nil || len(result.Reviews) != 0 {
		t.Errorf("Expected empty reviews, got %v", result.Reviews)
	}

	// The answer and its counter still land
	stored, err := base.Questions().GetByID(question.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.AnswerCount != 1 {
		t.Errorf("Expected answer count 1, got %d", stored.AnswerCount)
	}
	answer, err := base.Answers().GetByID(result.Answer.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if answer == nil {
		t.Fatal("Expected the answer to be persisted")
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newOrchestration(store)

	question := addQuestion(store, models.QuestionOpen)

	if _, err := svc.SubmitAnswer(question.ID, uuid.New(), "   "); !IsValidation(err) {
		t.Errorf("Expected validation error for blank body, got %v", err)
	}
	if _, err := svc.SubmitAnswer(uuid.New(), uuid.New(), "body"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown question, got %v", err)
	}
}

func TestSubmitAnswerDuplicate(t *testing.T) {
	store := newFakeStore()
	svc, _ := newOrchestration(store)

	question := addQuestion(store, models.QuestionOpen)
	authorID := uuid.New()

	if _, err := svc.SubmitAnswer(question.ID, authorID, "first"); err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if _, err := svc.SubmitAnswer(question.ID, authorID, "second"); !errors.Is(err, ErrDuplicateAnswer) {
		t.Errorf("Expected ErrDuplicateAnswer, got %v", err)
	}
}

func TestSubmitAnswerClosedQuestion(t *testing.T) {
	store := newFakeStore()
	svc, _ := newOrchestration(store)

	question := addQuestion(store, models.QuestionClosed)

	if _, err := svc.SubmitAnswer(question.ID, uuid.New(), "body"); !errors.Is(err, ErrQuestionClosed) {
		t.Errorf("Expected ErrQuestionClosed, got %v", err)
	}
}

func TestConsensusAcceptsAnswerWhenPoolExhausted(t *testing.T) {
	store := newFakeStore()
	svc, _ := newOrchestration(store)

	// Exactly 3 reviewers: the first round consumes the whole pool
	r1 := addReviewer(store, 4.0, 10, 0, 5)
	r2 := addReviewer(store, 4.0, 10, 0, 5)
	r3 := addReviewer(store, 4.0, 10, 0, 5)
	question := addQuestion(store, models.QuestionOpen)

	result, err := svc.SubmitAnswer(question.ID, uuid.New(), "an answer")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if len(result.Reviews) != 3 {
		t.Fatalf("Expected 3 reviews, got %d", len(result.Reviews))
	}

	// First submission: only 1 completed review
	first, err := svc.SubmitReview(result.Reviews[0].ID, 4, "", nil)
	if err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}
	if first.Consensus.Decision != DecisionAwaitingReviews {
		t.Errorf("Expected awaiting_reviews after 1 review, got %q", first.Consensus.Decision)
	}
	if first.Assignment == nil || first.Assignment.Status != models.AssignmentCompleted {
		t.Error("Expected matching assignment completed on submission")
	}

	// Second submission: 2 completed, but threshold needs 3
	second, err := svc.SubmitReview(result.Reviews[1].ID, 4, "", nil)
	if err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}
	if second.Consensus.Decision != DecisionAwaitingReviews {
		t.Errorf("Expected awaiting_reviews after 2 reviews, got %q", second.Consensus.Decision)
	}

	// Third submission reaches the threshold with nobody left to assign
	third, err := svc.SubmitReview(result.Reviews[2].ID, 4, "", nil)
	if err != nil {
		t.Fatalf("SubmitReview failed: %v", err)
	}
	if third.Consensus.Decision != DecisionThresholdMet {
		t.Errorf("Expected threshold_met, got %q", third.Consensus.Decision)
	}
	if len(third.Consensus.Assignments) != 0 {
		t.Errorf("Expected no next-round assignments, got %d", len(third.Consensus.Assignments))
	}

	answer, err := store.Answers().GetByID(result.Answer.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if answer.Status != models.AnswerAccepted {
		t.Errorf("Expected accepted answer, got %q", answer.Status)
	}

	updatedQuestion, err := store.Questions().GetByID(question.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updatedQuestion.Status != models.QuestionAnswered {
		t.Errorf("Expected answered question, got %q", updatedQuestion.Status)
	}

	// Every reviewer's load slot is released after their submission
	for _, r := range []*models.ReviewerProfile{r1, r2, r3} {
		if r.CurrentReviewLoad != 0 {
			t.Errorf("Expected load 0 after completion, got %d", r.CurrentReviewLoad)
		}
		if r.ReviewCount != 11 {
			t.Errorf("Expected review count 11, got %d", r.ReviewCount)
		}
	}
}

func TestConsensusTriggersNextRound(t *testing.T) {
	store := newFakeStore()
	svc, _ := newOrchestration(store)

	// A fourth reviewer remains for the next round
	addReviewer(store, 4.0, 10, 0, 5)
	addReviewer(store, 4.0, 10, 0, 5)
	addReviewer(store, 4.0, 10, 0, 5)
	fresh := addReviewer(store, 3.0, 0, 0, 5)
	question := addQuestion(store, models.QuestionOpen)

	result, err := svc.SubmitAnswer(question.ID, uuid.New(), "an answer")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}
	if len(result.Reviews) != 3 {
		t.Fatalf("Expected 3 first-round reviews, got %d", len(result.Reviews))
	}

	var last *ReviewSubmissionResult
	for _, review := range result.Reviews {
		last, err = svc.SubmitReview(review.ID, 5, "", nil)
		if err != nil {
			t.Fatalf("SubmitReview failed: %v", err)
		}
	}

	if last.Consensus.Decision != DecisionNeedsNextRound {
		t.Fatalf("Expected needs_next_round, got %q", last.Consensus.Decision)
	}
	if len(last.Consensus.Assignments) != 1 {
		t.Fatalf("Expected 1 next-round assignment, got %d", len(last.Consensus.Assignments))
	}
	if last.Consensus.Assignments[0].ReviewerID != fresh.ID {
		t.Error("Expected the next round to go to the unused reviewer")
	}

	// The answer stays pending until the next round resolves
	answer, err := store.Answers().GetByID(result.Answer.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if answer.Status != models.AnswerPendingReview {
		t.Errorf("Expected pending_review, got %q", answer.Status)
	}
}

func TestConsensusStaysOpenBelowThreshold(t *testing.T) {
	store := newFakeStore()
	svc, _ := newOrchestration(store)

	addReviewer(store, 4.0, 10, 0, 5)
	addReviewer(store, 4.0, 10, 0, 5)
	addReviewer(store, 4.0, 10, 0, 5)
	question := addQuestion(store, models.QuestionOpen)

	result, err := svc.SubmitAnswer(question.ID, uuid.New(), "an answer")
	if err != nil {
		t.Fatalf("SubmitAnswer failed: %v", err)
	}

	var last *ReviewSubmissionResult
	for _, review := range result.Reviews {
		last, err = svc.SubmitReview(review.ID, 3, "", nil)
		if err != nil {
			t.Fatalf("SubmitReview failed: %v", err)
		}
	}

	// Average 3.0 never reaches the 3.5 threshold
	if last.Consensus.Decision != DecisionAwaitingReviews {
		t.Errorf("Expected awaiting_reviews below threshold, got %q", last.Consensus.Decision)
	}

	answer, err := store.Answers().GetByID(result.Answer.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if answer.Status != models.AnswerPendingReview {
		t.Errorf("Expected answer still pending, got %q", answer.Status)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newOrchestration(store)

	if _, err := svc.CreateQuestion(uuid.New(), "", "body"); !IsValidation(err) {
		t.Errorf("Expected validation error for empty title, got %v", err)
	}
	if _, err := svc.CreateQuestion(uuid.New(), "title", " "); !IsValidation(err) {
		t.Errorf("Expected validation error for blank body, got %v", err)
	}

	question, err := svc.CreateQuestion(uuid.New(), "How do I test this?", "With a fake store.")
	if err != nil {
		t.Fatalf("CreateQuestion failed: %v", err)
	}
	if question.Status != models.QuestionOpen {
		t.Errorf("Expected open status, got %q", question.Status)
	}
}
