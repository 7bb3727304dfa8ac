package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"answerhub/internal/models"
	"answerhub/internal/repository"
)

// RankingInput is one entry of a reviewer's submitted rank ordering
type RankingInput struct {
	AnonymousID string `json:"anonymous_id"`
	Rank        int    `json:"rank"`
}

// BlindRankingService runs the anonymous consensus path: reviewers rank
// answers under anonymous labels and a Borda count picks the winner
type BlindRankingService struct {
	store repository.Store
}

// NewBlindRankingService creates a new blind ranking service
func NewBlindRankingService(store repository.Store) *BlindRankingService {
	return &BlindRankingService{store: store}
}

// CreateBlindAssignment gives a reviewer the question's answers under
// anonymous labels, excluding any answer the reviewer authored. Labels are
// assigned in answer order starting at "Answer A".
func (s *BlindRankingService) CreateBlindAssignment(reviewerID, questionID uuid.UUID) (*models.BlindAssignment, error) {
	var assignment *models.BlindAssignment
	err := s.store.InTx(func(tx repository.Store) error {
		question, err := tx.Questions().GetByID(questionID)
		if err != nil {
			return fmt.Errorf("failed to get question: %w", err)
		}
		if question == nil {
			return ErrNotFound
		}

		answers, err := tx.Answers().ListByQuestion(questionID)
		if err != nil {
			return fmt.Errorf("failed to list answers: %w", err)
		}

		assignment = &models.BlindAssignment{
			ID:         uuid.New(),
			ReviewerID: reviewerID,
			QuestionID: questionID,
			Status:     models.BlindAssigned,
			Items:      []models.BlindAssignmentItem{},
		}

		for _, answer := range answers {
			if answer.AuthorID == reviewerID {
				continue
			}
			assignment.Items = append(assignment.Items, models.BlindAssignmentItem{
				ID:           uuid.New(),
				AssignmentID: assignment.ID,
				AnonymousID:  anonymousLabel(len(assignment.Items)),
				RealAnswerID: answer.ID,
				AuthorID:     answer.AuthorID,
				Position:     len(assignment.Items),
			})
		}

		// A reviewer who authored the only answer has nothing to rank
		if len(assignment.Items) == 0 {
			return validationError("answers", "no answers available to rank")
		}

		if err := tx.Blind().CreateAssignment(assignment); err != nil {
			return fmt.Errorf("failed to create blind assignment: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

// anonymousLabel maps an item index to its stable label: "Answer A" for 0,
// "Answer B" for 1, and so on
func anonymousLabel(index int) string {
	return "Answer " + string(rune('A'+index))
}

// SubmitBlindRanking records a reviewer's rank ordering over their blind
// assignment and marks the assignment completed. Ranks must form a
// permutation of 1..n over the assigned labels.
func (s *BlindRankingService) SubmitBlindRanking(reviewerID, questionID uuid.UUID, rankings []RankingInput) (*models.AnswerRanking, error) {
	var ranking *models.AnswerRanking
	err := s.store.InTx(func(tx repository.Store) error {
		assignment, err := tx.Blind().GetAssignment(reviewerID, questionID)
		if err != nil {
			return fmt.Errorf("failed to get blind assignment: %w", err)
		}
		if assignment == nil {
			return ErrNotFound
		}
		if assignment.Status == models.BlindCompleted {
			return validationError("status", "blind assignment has already been completed")
		}

		items := make(map[string]*models.BlindAssignmentItem, len(assignment.Items))
		for i := range assignment.Items {
			items[assignment.Items[i].AnonymousID] = &assignment.Items[i]
		}

		n := len(assignment.Items)
		if n == 0 {
			return validationError("rankings", "assignment has no answers to rank")
		}
		if len(rankings) != n {
			return validationError("rankings", fmt.Sprintf("expected %d ranked answers, got %d", n, len(rankings)))
		}

		seenRanks := make(map[int]bool, n)
		seenLabels := make(map[string]bool, n)
		for _, entry := range rankings {
			if entry.Rank < 1 || entry.Rank > n {
				return validationError("rankings", fmt.Sprintf("rank %d is out of range 1..%d", entry.Rank, n))
			}
			if seenRanks[entry.Rank] {
				return validationError("rankings", fmt.Sprintf("rank %d appears more than once", entry.Rank))
			}
			seenRanks[entry.Rank] = true

			if _, ok := items[entry.AnonymousID]; !ok {
				return validationError("rankings", fmt.Sprintf("unknown answer label %q", entry.AnonymousID))
			}
			if seenLabels[entry.AnonymousID] {
				return validationError("rankings", fmt.Sprintf("answer label %q appears more than once", entry.AnonymousID))
			}
			seenLabels[entry.AnonymousID] = true
		}

		ranking = &models.AnswerRanking{
			ID:         uuid.New(),
			ReviewerID: reviewerID,
			QuestionID: questionID,
			Status:     models.RankingCompleted,
			Items:      []models.AnswerRankingItem{},
			CreatedAt:  time.Now().UTC(),
		}
		for _, entry := range rankings {
			item := items[entry.AnonymousID]
			ranking.Items = append(ranking.Items, models.AnswerRankingItem{
				ID:          uuid.New(),
				RankingID:   ranking.ID,
				AnswerID:    item.RealAnswerID,
				AnonymousID: entry.AnonymousID,
				Rank:        entry.Rank,
				BordaPoints: n - entry.Rank,
			})
		}

		if err := tx.Blind().CreateRanking(ranking); err != nil {
			return fmt.Errorf("failed to create ranking: %w", err)
		}
		if err := tx.Blind().UpdateAssignmentStatus(assignment.ID, models.BlindCompleted); err != nil {
			return fmt.Errorf("failed to complete blind assignment: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return ranking, nil
}

// CalculateBordaWinner tallies Borda points across all completed rankings for
// a question. Ties resolve to the answer with the lexically smallest id.
func (s *BlindRankingService) CalculateBordaWinner(questionID uuid.UUID) (*models.BordaResult, error) {
	rankings, err := s.store.Blind().ListCompletedRankings(questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed rankings: %w", err)
	}

	type tally struct {
		points  int
		rankSum int
		count   int
	}
	totals := make(map[uuid.UUID]*tally)
	for _, ranking := range rankings {
		for _, item := range ranking.Items {
			t := totals[item.AnswerID]
			if t == nil {
				t = &tally{}
				totals[item.AnswerID] = t
			}
			t.points += item.BordaPoints
			t.rankSum += item.Rank
			t.count++
		}
	}

	// Initialize with empty slice instead of nil to avoid JSON null
	standings := []models.BordaStanding{}
	for answerID, t := range totals {
		standings = append(standings, models.BordaStanding{
			AnswerID:         answerID,
			TotalBordaPoints: t.points,
			AverageRank:      float64(t.rankSum) / float64(t.count),
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].TotalBordaPoints != standings[j].TotalBordaPoints {
			return standings[i].TotalBordaPoints > standings[j].TotalBordaPoints
		}
		return standings[i].AnswerID.String() < standings[j].AnswerID.String()
	})

	result := &models.BordaResult{
		Rankings:       standings,
		TotalReviewers: len(rankings),
	}
	if len(standings) > 0 {
		winner := standings[0].AnswerID
		result.Winner = &winner
	}

	return result, nil
}
