package handlers

import (
	"encoding/json"
	"net/http"

	"answerhub/internal/service"
)

// BlindRankingHandler handles blind review HTTP requests
type BlindRankingHandler struct {
	blindService *service.BlindRankingService
}

// NewBlindRankingHandler creates a new blind ranking handler
func NewBlindRankingHandler(blindService *service.BlindRankingService) *BlindRankingHandler {
	return &BlindRankingHandler{blindService: blindService}
}

// SubmitRankingRequest represents a submitted rank ordering
type SubmitRankingRequest struct {
	Rankings []service.RankingInput `json:"rankings"`
}

// CreateAssignment gives the caller a blind assignment for a question
// @Summary Create a blind assignment
// @Description Assign the question's answers to the caller under anonymous labels
// @Tags BlindReview
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Success 201 {object} models.BlindAssignment "Blind assignment"
// @Failure 404 {object} map[string]string "Question not found"
// @Router /questions/{id}/blind-assignments [post]
func (h *BlindRankingHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	assignment, err := h.blindService.CreateBlindAssignment(userID, questionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, assignment)
}

// SubmitRanking records the caller's rank ordering
// @Summary Submit a blind ranking
// @Tags BlindReview
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Param request body SubmitRankingRequest true "Rank ordering"
// @Success 200 {object} models.AnswerRanking "Ranking recorded"
// @Failure 400 {object} map[string]string "Invalid ranking"
// @Failure 404 {object} map[string]string "No blind assignment"
// @Router /questions/{id}/rankings [post]
func (h *BlindRankingHandler) SubmitRanking(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	var req SubmitRankingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	ranking, err := h.blindService.SubmitBlindRanking(userID, questionID, req.Rankings)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ranking)
}

// BordaWinner tallies Borda points across all completed rankings
// @Summary Calculate the Borda winner for a question
// @Tags BlindReview
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Success 200 {object} models.BordaResult "Borda count result"
// @Router /questions/{id}/borda [get]
func (h *BlindRankingHandler) BordaWinner(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.blindService.CalculateBordaWinner(questionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
