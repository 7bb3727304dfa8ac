package service

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"answerhub/internal/models"
	"answerhub/internal/repository"
)

// fakeStore is an in-memory repository.Store used to test the services
// without a database. Entities are kept in insertion order so selection
// tie-breaks are deterministic, matching the SQL ordering.
type fakeStore struct {
	reviewers   []*models.ReviewerProfile
	assignments []*models.Assignment
	reviews     []*models.Review
	answers     []*models.Answer
	questions   []*models.Question

	blindAssignments []*models.BlindAssignment
	rankings         []*models.AnswerRanking
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) Reviewers() repository.ReviewerStore     { return &fakeReviewers{s} }
func (s *fakeStore) Assignments() repository.AssignmentStore { return &fakeAssignments{s} }
func (s *fakeStore) Reviews() repository.ReviewStore         { return &fakeReviews{s} }
func (s *fakeStore) Answers() repository.AnswerStore         { return &fakeAnswers{s} }
func (s *fakeStore) Questions() repository.QuestionStore     { return &fakeQuestions{s} }
func (s *fakeStore) Blind() repository.BlindStore            { return &fakeBlind{s} }

func (s *fakeStore) InTx(fn func(repository.Store) error) error {
	return fn(s)
}

func (s *fakeStore) InSavepoint(fn func(repository.Store) error) error {
	return fn(s)
}

// reviewers

type fakeReviewers struct{ s *fakeStore }

func (f *fakeReviewers) Create(profile *models.ReviewerProfile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	f.s.reviewers = append(f.s.reviewers, profile)
	return nil
}

func (f *fakeReviewers) GetByID(id uuid.UUID) (*models.ReviewerProfile, error) {
	for _, r := range f.s.reviewers {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeReviewers) ListActive() ([]models.ReviewerProfile, error) {
	result := []models.ReviewerProfile{}
	for _, r := range f.s.reviewers {
		if r.IsActive {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviewers) ListAvailable(excludeIDs []uuid.UUID) ([]models.ReviewerProfile, error) {
	excluded := make(map[uuid.UUID]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	result := []models.ReviewerProfile{}
	for _, r := range f.s.reviewers {
		if r.IsActive && r.CurrentReviewLoad < r.MaxConcurrentReviews && !excluded[r.ID] {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviewers) AdjustLoad(id uuid.UUID, delta int) error {
	for _, r := range f.s.reviewers {
		if r.ID == id {
			r.CurrentReviewLoad += delta
			if r.CurrentReviewLoad < 0 {
				r.CurrentReviewLoad = 0
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeReviewers) IncrementReviewCount(id uuid.UUID) error {
	for _, r := range f.s.reviewers {
		if r.ID == id {
			r.ReviewCount++
			return nil
		}
	}
	return nil
}

func (f *fakeReviewers) SetActive(id uuid.UUID, active bool) error {
	for _, r := range f.s.reviewers {
		if r.ID == id {
			r.IsActive = active
			return nil
		}
	}
	return sql.ErrNoRows
}

// assignments

type fakeAssignments struct{ s *fakeStore }

func (f *fakeAssignments) Create(assignment *models.Assignment) error {
	now := time.Now()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	cp := *assignment
	f.s.assignments = append(f.s.assignments, &cp)
	return nil
}

func (f *fakeAssignments) GetByID(id uuid.UUID) (*models.Assignment, error) {
	for _, a := range f.s.assignments {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAssignments) GetByAnswerAndReviewer(answerID, reviewerID uuid.UUID) (*models.Assignment, error) {
	for i := len(f.s.assignments) - 1; i >= 0; i-- {
		a := f.s.assignments[i]
		if a.AnswerID == answerID && a.ReviewerID == reviewerID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAssignments) ListByAnswer(answerID uuid.UUID) ([]models.Assignment, error) {
	result := []models.Assignment{}
	for _, a := range f.s.assignments {
		if a.AnswerID == answerID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAssignments) ListByReviewer(reviewerID uuid.UUID) ([]models.Assignment, error) {
	result := []models.Assignment{}
	for _, a := range f.s.assignments {
		if a.ReviewerID == reviewerID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAssignments) ListPendingByReviewer(reviewerID uuid.UUID) ([]models.Assignment, error) {
	result := []models.Assignment{}
	for _, a := range f.s.assignments {
		if a.ReviewerID == reviewerID && a.Status == models.AssignmentPending {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAssignments) UpdateStatus(id uuid.UUID, status string) error {
	for _, a := range f.s.assignments {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeAssignments) Reassign(id, newReviewerID uuid.UUID, assignedAt time.Time, dueDate *time.Time) error {
	for _, a := range f.s.assignments {
		if a.ID == id {
			a.ReviewerID = newReviewerID
			a.AssignedAt = assignedAt
			a.DueDate = dueDate
			a.Status = models.AssignmentPending
			return nil
		}
	}
	return sql.ErrNoRows
}

// reviews

type fakeReviews struct{ s *fakeStore }

func (f *fakeReviews) Create(review *models.Review) error {
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now
	cp := *review
	f.s.reviews = append(f.s.reviews, &cp)
	return nil
}

func (f *fakeReviews) GetByID(id uuid.UUID) (*models.Review, error) {
	for _, r := range f.s.reviews {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeReviews) Submit(id uuid.UUID, score int, comments string, similarity *float64, submittedAt time.Time) error {
	for _, r := range f.s.reviews {
		if r.ID == id {
			sc := score
			r.Score = &sc
			r.Comments = comments
			r.Similarity = similarity
			r.Status = models.ReviewSubmitted
			r.SubmittedAt = &submittedAt
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeReviews) ListByAnswer(answerID uuid.UUID) ([]models.Review, error) {
	result := []models.Review{}
	for _, r := range f.s.reviews {
		if r.AnswerID == answerID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviews) ListPendingByReviewer(reviewerID uuid.UUID) ([]models.Review, error) {
	result := []models.Review{}
	for _, r := range f.s.reviews {
		if r.ReviewerID == reviewerID && (r.Status == models.ReviewAssigned || r.Status == models.ReviewInProgress) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (f *fakeReviews) ReviewerIDsForAnswer(answerID uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, r := range f.s.reviews {
		if r.AnswerID == answerID && !seen[r.ReviewerID] {
			seen[r.ReviewerID] = true
			ids = append(ids, r.ReviewerID)
		}
	}
	return ids, nil
}

func (f *fakeReviews) StatsForAnswer(answerID uuid.UUID) (int, int, float64, error) {
	total, completed, sum := 0, 0, 0
	for _, r := range f.s.reviews {
		if r.AnswerID != answerID {
			continue
		}
		total++
		if r.Status == models.ReviewSubmitted && r.Score != nil {
			completed++
			sum += *r.Score
		}
	}

	average := 0.0
	if completed > 0 {
		average = float64(sum) / float64(completed)
	}
	return total, completed, average, nil
}

func (f *fakeReviews) MarkOverdue(now time.Time) (int64, error) {
	var affected int64
	for _, r := range f.s.reviews {
		if r.Status != models.ReviewAssigned && r.Status != models.ReviewInProgress {
			continue
		}
		for _, a := range f.s.assignments {
			if a.AnswerID == r.AnswerID && a.ReviewerID == r.ReviewerID &&
				(a.Status == models.AssignmentPending || a.Status == models.AssignmentAccepted) &&
				a.DueDate != nil && a.DueDate.Before(now) {
				r.Status = models.ReviewOverdue
				affected++
				break
			}
		}
	}
	return affected, nil
}

func (f *fakeReviews) Reassign(answerID, oldReviewerID, newReviewerID uuid.UUID, assignedAt time.Time) error {
	for _, r := range f.s.reviews {
		if r.AnswerID == answerID && r.ReviewerID == oldReviewerID &&
			(r.Status == models.ReviewAssigned || r.Status == models.ReviewInProgress || r.Status == models.ReviewOverdue) {
			r.ReviewerID = newReviewerID
			r.AssignedAt = assignedAt
			r.Status = models.ReviewAssigned
			return nil
		}
	}
	return sql.ErrNoRows
}

// answers

type fakeAnswers struct{ s *fakeStore }

func (f *fakeAnswers) Create(answer *models.Answer) error {
	now := time.Now()
	answer.CreatedAt = now
	answer.UpdatedAt = now
	cp := *answer
	f.s.answers = append(f.s.answers, &cp)
	return nil
}

func (f *fakeAnswers) GetByID(id uuid.UUID) (*models.Answer, error) {
	for _, a := range f.s.answers {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAnswers) GetByQuestionAndAuthor(questionID, authorID uuid.UUID) (*models.Answer, error) {
	for _, a := range f.s.answers {
		if a.QuestionID == questionID && a.AuthorID == authorID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAnswers) ListByQuestion(questionID uuid.UUID) ([]models.Answer, error) {
	result := []models.Answer{}
	for _, a := range f.s.answers {
		if a.QuestionID == questionID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (f *fakeAnswers) UpdateStatus(id uuid.UUID, status string) error {
	for _, a := range f.s.answers {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

// questions

type fakeQuestions struct{ s *fakeStore }

func (f *fakeQuestions) Create(question *models.Question) error {
	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now
	cp := *question
	f.s.questions = append(f.s.questions, &cp)
	return nil
}

func (f *fakeQuestions) GetByID(id uuid.UUID) (*models.Question, error) {
	for _, q := range f.s.questions {
		if q.ID == id {
			cp := *q
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeQuestions) IncrementAnswerCount(id uuid.UUID) error {
	for _, q := range f.s.questions {
		if q.ID == id {
			q.AnswerCount++
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeQuestions) UpdateStatus(id uuid.UUID, status string) error {
	for _, q := range f.s.questions {
		if q.ID == id {
			q.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

// blind assignments and rankings

type fakeBlind struct{ s *fakeStore }

func (f *fakeBlind) CreateAssignment(assignment *models.BlindAssignment) error {
	now := time.Now()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	cp := *assignment
	f.s.blindAssignments = append(f.s.blindAssignments, &cp)
	return nil
}

func (f *fakeBlind) GetAssignment(reviewerID, questionID uuid.UUID) (*models.BlindAssignment, error) {
	for i := len(f.s.blindAssignments) - 1; i >= 0; i-- {
		a := f.s.blindAssignments[i]
		if a.ReviewerID == reviewerID && a.QuestionID == questionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBlind) UpdateAssignmentStatus(id uuid.UUID, status string) error {
	for _, a := range f.s.blindAssignments {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeBlind) CreateRanking(ranking *models.AnswerRanking) error {
	ranking.CreatedAt = time.Now()
	cp := *ranking
	f.s.rankings = append(f.s.rankings, &cp)
	return nil
}

func (f *fakeBlind) ListCompletedRankings(questionID uuid.UUID) ([]models.AnswerRanking, error) {
	result := []models.AnswerRanking{}
	for _, r := range f.s.rankings {
		if r.QuestionID == questionID && r.Status == models.RankingCompleted {
			result = append(result, *r)
		}
	}
	return result, nil
}

// failingAssignStore fails every reviewer lookup, for exercising the
// degraded assignment paths.

var errReviewersUnavailable = errors.New("reviewer lookup unavailable")

type failingReviewers struct{ repository.ReviewerStore }

func (failingReviewers) ListAvailable(excludeIDs []uuid.UUID) ([]models.ReviewerProfile, error) {
	return nil, errReviewersUnavailable
}

type failingAssignStore struct{ *fakeStore }

func (s *failingAssignStore) Reviewers() repository.ReviewerStore {
	return failingReviewers{s.fakeStore.Reviewers()}
}

func (s *failingAssignStore) InTx(fn func(repository.Store) error) error {
	return fn(s)
}

func (s *failingAssignStore) InSavepoint(fn func(repository.Store) error) error {
	return fn(s)
}

// test fixtures

func addReviewer(s *fakeStore, rating float64, reviewCount, load, maxLoad int, expertise ...string) *models.ReviewerProfile {
	r := &models.ReviewerProfile{
		ID:                   uuid.New(),
		UserID:               uuid.New(),
		DisplayName:          "reviewer",
		Expertise:            expertise,
		ReviewCount:          reviewCount,
		AverageRating:        rating,
		IsActive:             true,
		MaxConcurrentReviews: maxLoad,
		CurrentReviewLoad:    load,
	}
	s.reviewers = append(s.reviewers, r)
	return r
}

func addQuestion(s *fakeStore, status string) *models.Question {
	q := &models.Question{
		ID:       uuid.New(),
		AuthorID: uuid.New(),
		Title:    "question",
		Body:     "body",
		Status:   status,
	}
	s.questions = append(s.questions, q)
	return q
}

func addAnswer(s *fakeStore, questionID, authorID uuid.UUID) *models.Answer {
	a := &models.Answer{
		ID:         uuid.New(),
		QuestionID: questionID,
		AuthorID:   authorID,
		Body:       "answer body",
		Status:     models.AnswerPendingReview,
	}
	s.answers = append(s.answers, a)
	return a
}
