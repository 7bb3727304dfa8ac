package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"answerhub/internal/service"
	"answerhub/pkg/validator"
)

// ReviewerHandler handles reviewer directory HTTP requests
type ReviewerHandler struct {
	reviewerService *service.ReviewerService
}

// NewReviewerHandler creates a new reviewer handler
func NewReviewerHandler(reviewerService *service.ReviewerService) *ReviewerHandler {
	return &ReviewerHandler{reviewerService: reviewerService}
}

// CreateReviewerRequest represents a reviewer registration request
type CreateReviewerRequest struct {
	DisplayName          string   `json:"display_name" validate:"required"`
	Expertise            []string `json:"expertise"`
	MaxConcurrentReviews int      `json:"max_concurrent_reviews" validate:"required,min=1"`
}

// SetActiveRequest represents an active flag update
type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// Create registers the caller as a reviewer
// @Summary Register as a reviewer
// @Tags Reviewers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewerRequest true "Reviewer profile"
// @Success 201 {object} models.ReviewerProfile "Reviewer created"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /reviewers [post]
func (h *ReviewerHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	var req CreateReviewerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.reviewerService.CreateReviewer(userID, validator.SanitizeString(req.DisplayName), req.Expertise, req.MaxConcurrentReviews)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	slog.Info("Reviewer registered", "reviewer_id", profile.ID, "user_id", userID)

	respondWithJSON(w, http.StatusCreated, profile)
}

// Get retrieves a reviewer profile
// @Summary Get a reviewer profile
// @Tags Reviewers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reviewer ID"
// @Success 200 {object} models.ReviewerProfile "Reviewer profile"
// @Failure 404 {object} map[string]string "Not found"
// @Router /reviewers/{id} [get]
func (h *ReviewerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	profile, err := h.reviewerService.GetReviewerByID(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// List retrieves all active reviewers
// @Summary List active reviewers
// @Tags Reviewers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ReviewerProfile "Active reviewers"
// @Router /reviewers [get]
func (h *ReviewerHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.reviewerService.ListActiveReviewers()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profiles)
}

// SetActive flips a reviewer's active flag
// @Summary Activate or deactivate a reviewer
// @Tags Reviewers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reviewer ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} map[string]string "Reviewer updated"
// @Failure 404 {object} map[string]string "Not found"
// @Router /reviewers/{id}/active [put]
func (h *ReviewerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.reviewerService.SetReviewerActive(id, req.IsActive); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Reviewer updated"})
}
