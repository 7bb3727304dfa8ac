package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"answerhub/internal/models"
	"answerhub/internal/service"
)

// AssignmentHandler handles assignment HTTP requests
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// AssignReviewersRequest represents a manual assignment request
type AssignReviewersRequest struct {
	AnswerID           uuid.UUID   `json:"answer_id"`
	Priority           string      `json:"priority"`
	RequiredExpertise  []string    `json:"required_expertise"`
	ExcludeReviewerIDs []uuid.UUID `json:"exclude_reviewer_ids"`
}

// UpdateAssignmentStatusRequest represents a status update
type UpdateAssignmentStatusRequest struct {
	Status string `json:"status"`
}

// Assign triggers reviewer assignment for an answer
// @Summary Assign reviewers to an answer
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AssignReviewersRequest true "Assignment parameters"
// @Success 201 {object} map[string]interface{} "Assignments created"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignReviewersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if req.AnswerID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "answer_id is required")
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	assignments, reviews, err := h.assignmentService.AssignReviewers(req.AnswerID, req.Priority, req.RequiredExpertise, req.ExcludeReviewerIDs)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"assignments": assignments,
		"reviews":     reviews,
	})
}

// Get retrieves a single assignment
// @Summary Get an assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} models.Assignment "Assignment"
// @Failure 404 {object} map[string]string "Not found"
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetAssignmentByID(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, assignment)
}

// UpdateStatus writes a new assignment status
// @Summary Update an assignment's status
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param request body UpdateAssignmentStatusRequest true "New status"
// @Success 200 {object} map[string]string "Status updated"
// @Failure 404 {object} map[string]string "Not found"
// @Router /assignments/{id}/status [put]
func (h *AssignmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateAssignmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}
	if req.Status == "" {
		respondWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := h.assignmentService.UpdateAssignmentStatus(id, req.Status); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Assignment updated"})
}

// ListForReviewer retrieves a reviewer's assignments
// @Summary List assignments for a reviewer
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reviewer ID"
// @Success 200 {array} models.Assignment "Assignments"
// @Router /reviewers/{id}/assignments [get]
func (h *AssignmentHandler) ListForReviewer(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	assignments, err := h.assignmentService.GetAssignmentsForReviewer(reviewerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, assignments)
}

// ListForAnswer retrieves an answer's assignments
// @Summary List assignments for an answer
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Answer ID"
// @Success 200 {array} models.Assignment "Assignments"
// @Router /answers/{id}/assignments [get]
func (h *AssignmentHandler) ListForAnswer(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	assignments, err := h.assignmentService.GetAssignmentsForAnswer(answerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, assignments)
}

// Redistribute triggers a redistribution sweep
// @Summary Redistribute assignments away from overloaded reviewers
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int "Assignments moved"
// @Router /assignments/redistribute [post]
func (h *AssignmentHandler) Redistribute(w http.ResponseWriter, r *http.Request) {
	moved, err := h.assignmentService.RedistributeAssignments()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"moved": moved})
}
