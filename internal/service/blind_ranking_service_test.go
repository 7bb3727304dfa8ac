package service

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"answerhub/internal/models"
)

func seedQuestionWithAnswers(t *testing.T, store *fakeStore, count int) (*models.Question, []*models.Answer) {
	t.Helper()
	question := addQuestion(store, models.QuestionOpen)
	answers := make([]*models.Answer, 0, count)
	for i := 0; i < count; i++ {
		answers = append(answers, addAnswer(store, question.ID, uuid.New()))
	}
	return question, answers
}

func TestCreateBlindAssignment(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	question, answers := seedQuestionWithAnswers(t, store, 3)
	reviewerID := uuid.New()

	assignment, err := svc.CreateBlindAssignment(reviewerID, question.ID)
	if err != nil {
		t.Fatalf("CreateBlindAssignment failed: %v", err)
	}

	if len(assignment.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(assignment.Items))
	}
	for i, item := range assignment.Items {
		expected := "Answer " + string(rune('A'+i))
		if item.AnonymousID != expected {
			t.Errorf("Expected label %q at position %d, got %q", expected, i, item.AnonymousID)
		}
		if item.Position != i {
			t.Errorf("Expected position %d, got %d", i, item.Position)
		}
		if item.RealAnswerID != answers[i].ID {
			t.Errorf("Expected label order to follow answer order")
		}
	}
	if assignment.Status != models.BlindAssigned {
		t.Errorf("Expected assigned status, got %q", assignment.Status)
	}
}

func TestCreateBlindAssignmentExcludesOwnAnswer(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	question, answers := seedQuestionWithAnswers(t, store, 3)
	// The reviewer authored the middle answer
	reviewerID := answers[1].AuthorID

	assignment, err := svc.CreateBlindAssignment(reviewerID, question.ID)
	if err != nil {
		t.Fatalf("CreateBlindAssignment failed: %v", err)
	}

	if len(assignment.Items) != 2 {
		t.Fatalf("Expected 2 items excluding own answer, got %d", len(assignment.Items))
	}
	for _, item := range assignment.Items {
		if item.RealAnswerID == answers[1].ID {
			t.Error("Reviewer's own answer must not appear in the blind assignment")
		}
	}
	// Labels stay contiguous after the exclusion
	if assignment.Items[0].AnonymousID != "Answer A" || assignment.Items[1].AnonymousID != "Answer B" {
		t.Error("Expected contiguous labels A and B")
	}
}

func TestCreateBlindAssignmentNothingToRank(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	// The reviewer authored the question's only answer
	question, answers := seedQuestionWithAnswers(t, store, 1)
	if _, err := svc.CreateBlindAssignment(answers[0].AuthorID, question.ID); !IsValidation(err) {
		t.Errorf("Expected validation error for a sole-author reviewer, got %v", err)
	}

	// A question without answers has nothing to rank either
	empty := addQuestion(store, models.QuestionOpen)
	if _, err := svc.CreateBlindAssignment(uuid.New(), empty.ID); !IsValidation(err) {
		t.Errorf("Expected validation error for an answerless question, got %v", err)
	}
}

func TestCreateBlindAssignmentUnknownQuestion(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	if _, err := svc.CreateBlindAssignment(uuid.New(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSubmitBlindRanking(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	question, _ := seedQuestionWithAnswers(t, store, 3)
	reviewerID := uuid.New()

	assignment, err := svc.CreateBlindAssignment(reviewerID, question.ID)
	if err != nil {
		t.Fatalf("CreateBlindAssignment failed: %v", err)
	}

	ranking, err := svc.SubmitBlindRanking(reviewerID, question.ID, []RankingInput{
		{AnonymousID: "Answer B", Rank: 1},
		{AnonymousID: "Answer A", Rank: 2},
		{AnonymousID: "Answer C", Rank: 3},
	})
	if err != nil {
		t.Fatalf("SubmitBlindRanking failed: %v", err)
	}

	// Borda points are n - rank: 2, 1, 0 for ranks 1, 2, 3
	for _, item := range ranking.Items {
		expected := 3 - item.Rank
		if item.BordaPoints != expected {
			t.Errorf("Expected %d Borda points for rank %d, got %d", expected, item.Rank, item.BordaPoints)
		}
	}

	// The assignment is now completed and cannot be ranked again
	_, err = svc.SubmitBlindRanking(reviewerID, question.ID, []RankingInput{
		{AnonymousID: "Answer A", Rank: 1},
		{AnonymousID: "Answer B", Rank: 2},
		{AnonymousID: "Answer C", Rank: 3},
	})
	if !IsValidation(err) {
		t.Errorf("Expected validation error on second ranking, got %v", err)
	}

	_ = assignment
}

func TestSubmitBlindRankingValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	question, _ := seedQuestionWithAnswers(t, store, 3)
	reviewerID := uuid.New()

	if _, err := svc.CreateBlindAssignment(reviewerID, question.ID); err != nil {
		t.Fatalf("CreateBlindAssignment failed: %v", err)
	}

	tests := []struct {
		name     string
		rankings []RankingInput
	}{
		{"too few entries", []RankingInput{
			{AnonymousID: "Answer A", Rank: 1},
		}},
		{"rank out of range", []RankingInput{
			{AnonymousID: "Answer A", Rank: 1},
			{AnonymousID: "Answer B", Rank: 2},
			{AnonymousID: "Answer C", Rank: 4},
		}},
		{"duplicate rank", []RankingInput{
			{AnonymousID: "Answer A", Rank: 1},
			{AnonymousID: "Answer B", Rank: 1},
			{AnonymousID: "Answer C", Rank: 2},
		}},
		{"unknown label", []RankingInput{
			{AnonymousID: "Answer A", Rank: 1},
			{AnonymousID: "Answer B", Rank: 2},
			{AnonymousID: "Answer Z", Rank: 3},
		}},
		{"duplicate label", []RankingInput{
			{AnonymousID: "Answer A", Rank: 1},
			{AnonymousID: "Answer A", Rank: 2},
			{AnonymousID: "Answer C", Rank: 3},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SubmitBlindRanking(reviewerID, question.ID, tt.rankings); !IsValidation(err) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestSubmitBlindRankingWithoutAssignment(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	question, _ := seedQuestionWithAnswers(t, store, 2)

	_, err := svc.SubmitBlindRanking(uuid.New(), question.ID, []RankingInput{
		{AnonymousID: "Answer A", Rank: 1},
		{AnonymousID: "Answer B", Rank: 2},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCalculateBordaWinner(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	question, answers := seedQuestionWithAnswers(t, store, 3)

	rank := func(order []int) {
		t.Helper()
		reviewerID := uuid.New()
		if _, err := svc.CreateBlindAssignment(reviewerID, question.ID); err != nil {
			t.Fatalf("CreateBlindAssignment failed: %v", err)
		}
		inputs := make([]RankingInput, len(order))
		for i, r := range order {
			inputs[i] = RankingInput{AnonymousID: "Answer " + string(rune('A'+i)), Rank: r}
		}
		if _, err := svc.SubmitBlindRanking(reviewerID, question.ID, inputs); err != nil {
			t.Fatalf("SubmitBlindRanking failed: %v", err)
		}
	}

	// Both reviewers put the first answer on top
	rank([]int{1, 2, 3})
	rank([]int{1, 3, 2})

	result, err := svc.CalculateBordaWinner(question.ID)
	if err != nil {
		t.Fatalf("CalculateBordaWinner failed: %v", err)
	}

	if result.TotalReviewers != 2 {
		t.Errorf("Expected 2 reviewers counted, got %d", result.TotalReviewers)
	}
	if result.Winner == nil || *result.Winner != answers[0].ID {
		t.Error("Expected the unanimously top-ranked answer to win")
	}
	if len(result.Rankings) != 3 {
		t.Fatalf("Expected 3 standings, got %d", len(result.Rankings))
	}

	// Winner holds 2+2=4 points with average rank 1
	top := result.Rankings[0]
	if top.TotalBordaPoints != 4 {
		t.Errorf("Expected 4 Borda points, got %d", top.TotalBordaPoints)
	}
	if math.Abs(top.AverageRank-1.0) > 1e-9 {
		t.Errorf("Expected average rank 1.0, got %f", top.AverageRank)
	}
}

func TestCalculateBordaWinnerTieBreak(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	question, answers := seedQuestionWithAnswers(t, store, 2)

	// Opposite orderings produce a 1-1 point tie
	first := uuid.New()
	if _, err := svc.CreateBlindAssignment(first, question.ID); err != nil {
		t.Fatalf("CreateBlindAssignment failed: %v", err)
	}
	if _, err := svc.SubmitBlindRanking(first, question.ID, []RankingInput{
		{AnonymousID: "Answer A", Rank: 1},
		{AnonymousID: "Answer B", Rank: 2},
	}); err != nil {
		t.Fatalf("SubmitBlindRanking failed: %v", err)
	}

	second := uuid.New()
	if _, err := svc.CreateBlindAssignment(second, question.ID); err != nil {
		t.Fatalf("CreateBlindAssignment failed: %v", err)
	}
	if _, err := svc.SubmitBlindRanking(second, question.ID, []RankingInput{
		{AnonymousID: "Answer A", Rank: 2},
		{AnonymousID: "Answer B", Rank: 1},
	}); err != nil {
		t.Fatalf("SubmitBlindRanking failed: %v", err)
	}

	result, err := svc.CalculateBordaWinner(question.ID)
	if err != nil {
		t.Fatalf("CalculateBordaWinner failed: %v", err)
	}

	expected := answers[0].ID
	if answers[1].ID.String() < expected.String() {
		expected = answers[1].ID
	}
	if result.Winner == nil || *result.Winner != expected {
		t.Error("Expected the tie to resolve to the lexically smallest answer id")
	}
}

func TestCalculateBordaWinnerNoRankings(t *testing.T) {
	store := newFakeStore()
	svc := NewBlindRankingService(store)

	question, _ := seedQuestionWithAnswers(t, store, 2)

	result, err := svc.CalculateBordaWinner(question.ID)
	if err != nil {
		t.Fatalf("CalculateBordaWinner failed: %v", err)
	}
	if result.Winner != nil {
		t.Error("Expected no winner without rankings")
	}
	if result.Rankings == nil || len(result.Rankings) != 0 {
		t.Errorf("Expected empty standings, got %v", result.Rankings)
	}
	if result.TotalReviewers != 0 {
		t.Errorf("Expected 0 reviewers, got %d", result.TotalReviewers)
	}
}
