package handlers

import (
	"encoding/json"
	"net/http"

	"answerhub/internal/service"
	"answerhub/pkg/validator"
)

// QuestionHandler handles question and answer HTTP requests
type QuestionHandler struct {
	answerService *service.AnswerService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(answerService *service.AnswerService) *QuestionHandler {
	return &QuestionHandler{answerService: answerService}
}

// CreateQuestionRequest represents a new question
type CreateQuestionRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// SubmitAnswerRequest represents a new answer to a question
type SubmitAnswerRequest struct {
	Body string `json:"body" validate:"required"`
}

// CreateQuestion creates a new open question
// @Summary Create a question
// @Tags Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateQuestionRequest true "Question"
// @Success 201 {object} models.Question "Question created"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := h.answerService.CreateQuestion(userID, validator.SanitizeString(req.Title), req.Body)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, question)
}

// GetQuestion retrieves a question
// @Summary Get a question
// @Tags Questions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Success 200 {object} models.Question "Question"
// @Failure 404 {object} map[string]string "Not found"
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	question, err := h.answerService.GetQuestionByID(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, question)
}

// SubmitAnswer submits an answer to a question and triggers reviewer assignment
// @Summary Submit an answer
// @Description Persist an answer and assign its first review round
// @Tags Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Param request body SubmitAnswerRequest true "Answer"
// @Success 201 {object} models.AnswerSubmissionResult "Answer submitted"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Duplicate answer or closed question"
// @Router /questions/{id}/answers [post]
func (h *QuestionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	userID, ok := userIDFromContext(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	result, err := h.answerService.SubmitAnswer(questionID, userID, req.Body)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// ListAnswers retrieves all answers to a question
// @Summary List answers for a question
// @Tags Questions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Question ID"
// @Success 200 {array} models.Answer "Answers"
// @Router /questions/{id}/answers [get]
func (h *QuestionHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	answers, err := h.answerService.GetAnswersForQuestion(questionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, answers)
}

// GetAnswer retrieves a single answer
// @Summary Get an answer
// @Tags Questions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Answer ID"
// @Success 200 {object} models.Answer "Answer"
// @Failure 404 {object} map[string]string "Not found"
// @Router /answers/{id} [get]
func (h *QuestionHandler) GetAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	answer, err := h.answerService.GetAnswerByID(id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, answer)
}
