package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that can ask questions, answer them, or review answers
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Question statuses
const (
	QuestionOpen     = "open"
	QuestionAnswered = "answered"
	QuestionClosed   = "closed"
)

// Question represents a question open for answers
type Question struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AuthorID    uuid.UUID `json:"author_id" db:"author_id"`
	Title       string    `json:"title" db:"title"`
	Body        string    `json:"body" db:"body"`
	Status      string    `json:"status" db:"status"` // open, answered, closed
	AnswerCount int       `json:"answer_count" db:"answer_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Answer statuses
const (
	AnswerPendingReview = "pending_review"
	AnswerAccepted      = "accepted"
)

// Answer represents a user's answer to a question
type Answer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	QuestionID uuid.UUID `json:"question_id" db:"question_id"`
	AuthorID   uuid.UUID `json:"author_id" db:"author_id"`
	Body       string    `json:"body" db:"body"`
	Status     string    `json:"status" db:"status"` // pending_review, accepted
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewerProfile holds a reviewer's expertise and capacity state.
// CurrentReviewLoad is owned by the assignment engine: incremented when an
// assignment is created, decremented only when one completes.
type ReviewerProfile struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	UserID               uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName          string    `json:"display_name" db:"display_name"`
	Expertise            []string  `json:"expertise" db:"expertise"`
	ReviewCount          int       `json:"review_count" db:"review_count"`
	AverageRating        float64   `json:"average_rating" db:"average_rating"` // 0-5
	IsActive             bool      `json:"is_active" db:"is_active"`
	MaxConcurrentReviews int       `json:"max_concurrent_reviews" db:"max_concurrent_reviews"`
	CurrentReviewLoad    int       `json:"current_review_load" db:"current_review_load"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// Assignment priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Assignment statuses
const (
	AssignmentPending   = "pending"
	AssignmentAccepted  = "accepted"
	AssignmentDeclined  = "declined"
	AssignmentCompleted = "completed"
)

// Assignment represents a reviewer's task to review a specific answer.
// DueDate is derived from the priority at creation and is only recomputed
// when the assignment is moved to another reviewer.
type Assignment struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	AnswerID   uuid.UUID  `json:"answer_id" db:"answer_id"`
	ReviewerID uuid.UUID  `json:"reviewer_id" db:"reviewer_id"`
	Priority   string     `json:"priority" db:"priority"`
	Status     string     `json:"status" db:"status"`
	AssignedAt time.Time  `json:"assigned_at" db:"assigned_at"`
	DueDate    *time.Time `json:"due_date,omitempty" db:"due_date"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Review statuses
const (
	ReviewAssigned   = "assigned"
	ReviewInProgress = "in_progress"
	ReviewSubmitted  = "submitted"
	ReviewOverdue    = "overdue"
	ReviewCancelled  = "cancelled"
)

// Review represents the scored outcome a reviewer produces for an assignment.
// Score and Similarity are set if and only if Status is submitted.
type Review struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	AnswerID    uuid.UUID  `json:"answer_id" db:"answer_id"`
	ReviewerID  uuid.UUID  `json:"reviewer_id" db:"reviewer_id"`
	Score       *int       `json:"score,omitempty" db:"score"`           // 1-5
	Similarity  *float64   `json:"similarity,omitempty" db:"similarity"` // 0-1
	Status      string     `json:"status" db:"status"`
	Comments    string     `json:"comments" db:"comments"`
	AssignedAt  time.Time  `json:"assigned_at" db:"assigned_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ReviewStats aggregates submitted reviews for an answer.
// ThresholdReached is the consensus rule for the non-blind path:
// average >= 3.5 with at least 3 submitted reviews.
type ReviewStats struct {
	TotalReviews     int     `json:"total_reviews"`
	CompletedReviews int     `json:"completed_reviews"`
	AverageScore     float64 `json:"average_score"`
	ThresholdReached bool    `json:"threshold_reached"`
}

// Blind assignment / ranking statuses
const (
	BlindAssigned     = "assigned"
	BlindCompleted    = "completed"
	RankingInProgress = "in_progress"
	RankingCompleted  = "completed"
)

// BlindAssignment gives a reviewer a set of anonymized answers to rank.
// Anonymous labels are unique per assignment and stable for its lifetime.
type BlindAssignment struct {
	ID         uuid.UUID             `json:"id" db:"id"`
	ReviewerID uuid.UUID             `json:"reviewer_id" db:"reviewer_id"`
	QuestionID uuid.UUID             `json:"question_id" db:"question_id"`
	Status     string                `json:"status" db:"status"`
	Items      []BlindAssignmentItem `json:"items"`
	CreatedAt  time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at" db:"updated_at"`
}

// BlindAssignmentItem maps an anonymous label to a real answer
type BlindAssignmentItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	AssignmentID uuid.UUID `json:"assignment_id" db:"assignment_id"`
	AnonymousID  string    `json:"anonymous_id" db:"anonymous_id"` // "Answer A", "Answer B", ...
	RealAnswerID uuid.UUID `json:"real_answer_id" db:"real_answer_id"`
	AuthorID     uuid.UUID `json:"author_id" db:"author_id"`
	Position     int       `json:"position" db:"position"`
}

// AnswerRanking is one reviewer's rank ordering over a blind assignment.
// Rank values form a permutation of 1..n over the assigned candidate set.
type AnswerRanking struct {
	ID         uuid.UUID           `json:"id" db:"id"`
	ReviewerID uuid.UUID           `json:"reviewer_id" db:"reviewer_id"`
	QuestionID uuid.UUID           `json:"question_id" db:"question_id"`
	Status     string              `json:"status" db:"status"`
	Items      []AnswerRankingItem `json:"items"`
	CreatedAt  time.Time           `json:"created_at" db:"created_at"`
}

// AnswerRankingItem records one ranked answer with its Borda points (n - rank)
type AnswerRankingItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RankingID   uuid.UUID `json:"ranking_id" db:"ranking_id"`
	AnswerID    uuid.UUID `json:"answer_id" db:"answer_id"`
	AnonymousID string    `json:"anonymous_id" db:"anonymous_id"`
	Rank        int       `json:"rank" db:"rank"`
	BordaPoints int       `json:"borda_points" db:"borda_points"`
}

// BordaStanding is one answer's tally in a Borda count
type BordaStanding struct {
	AnswerID         uuid.UUID `json:"answer_id"`
	TotalBordaPoints int       `json:"total_borda_points"`
	AverageRank      float64   `json:"average_rank"`
}

// BordaResult is the outcome of a Borda count across all completed rankings
// for a question
type BordaResult struct {
	Winner         *uuid.UUID      `json:"winner,omitempty"`
	Rankings       []BordaStanding `json:"rankings"`
	TotalReviewers int             `json:"total_reviewers"`
}

// AnswerSubmissionResult reports what happened when an answer was submitted
type AnswerSubmissionResult struct {
	Answer      Answer       `json:"answer"`
	Assignments []Assignment `json:"assignments"`
	Reviews     []Review     `json:"reviews"`
}
