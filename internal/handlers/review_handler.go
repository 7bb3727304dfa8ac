package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"answerhub/internal/service"
	"answerhub/pkg/validator"
)

// ReviewHandler handles review ledger HTTP requests
type ReviewHandler struct {
	reviewService    *service.ReviewService
	answerService    *service.AnswerService
	consensusService *service.ConsensusService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *service.ReviewService, answerService *service.AnswerService, consensusService *service.ConsensusService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:    reviewService,
		answerService:    answerService,
		consensusService: consensusService,
	}
}

// CreateReviewRequest represents a manually opened review
type CreateReviewRequest struct {
	AnswerID   uuid.UUID `json:"answer_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
}

// SubmitReviewRequest represents a review submission
type SubmitReviewRequest struct {
	Score      int      `json:"score" validate:"required,min=1,max=5"`
	Comments   string   `json:"comments"`
	Similarity *float64 `json:"similarity"`
}

// Create opens a review record for a reviewer on an answer
// @Summary Create a review record
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewRequest true "Review parameters"
// @Success 201 {object} models.Review "Review created"
// @Failure 404 {object} map[string]string "Answer not found"
// @Router /reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if req.AnswerID == uuid.Nil || req.ReviewerID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "answer_id and reviewer_id are required")
		return
	}

	review, err := h.reviewService.CreateReview(req.AnswerID, req.ReviewerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, review)
}

// Submit records a reviewer's score and runs the consensus step
// @Summary Submit a review
// @Description Record the score, complete the matching assignment, and evaluate consensus
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body SubmitReviewRequest true "Review submission"
// @Success 200 {object} service.ReviewSubmissionResult "Review submitted"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Not found"
// @Router /reviews/{id}/submit [post]
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.answerService.SubmitReview(id, req.Score, req.Comments, req.Similarity)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// Get retrieves a single review
// @Summary Get a review
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} models.Review "Review"
// @Failure 404 {object} map[string]string "Not found"
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	review, err := h.reviewService.GetReviewByID(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, review)
}

// Stats aggregates submitted reviews for an answer
// @Summary Get review statistics for an answer
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Answer ID"
// @Success 200 {object} models.ReviewStats "Review statistics"
// @Router /answers/{id}/stats [get]
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.reviewService.GetReviewStatsForAnswer(answerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// Evaluate runs one consensus step for an answer on demand
// @Summary Evaluate consensus for an answer
// @Description Re-run the consensus step, possibly assigning a next review round
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Answer ID"
// @Success 200 {object} service.ConsensusOutcome "Consensus outcome"
// @Failure 404 {object} map[string]string "Not found"
// @Router /answers/{id}/evaluate [post]
func (h *ReviewHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	outcome, err := h.consensusService.EvaluateAnswer(answerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, outcome)
}

// ListForAnswer retrieves all reviews for an answer
// @Summary List reviews for an answer
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Answer ID"
// @Success 200 {array} models.Review "Reviews"
// @Router /answers/{id}/reviews [get]
func (h *ReviewHandler) ListForAnswer(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetReviewsForAnswer(answerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}

// ListPendingForReviewer retrieves a reviewer's open reviews
// @Summary List a reviewer's pending reviews
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reviewer ID"
// @Success 200 {array} models.Review "Pending reviews"
// @Router /reviewers/{id}/reviews/pending [get]
func (h *ReviewHandler) ListPendingForReviewer(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetPendingReviewsForReviewer(reviewerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}
