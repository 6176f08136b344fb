package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// StudentHandler serves the student-facing attempt endpoints. Every route acts on the caller's own data.
type StudentHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewStudentHandler(attemptService services.AttemptService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

func (h *StudentHandler) ListQuizzes(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	quizzes, err := h.attemptService.GetStudentQuizzes(c.Request.Context(), caller.SubjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

// StartQuiz opens an attempt or resumes the open one
// @Summary Start quiz attempt
// @Tags student
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} services.StartAttemptResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /student/quizzes/{id}/start [post]
func (h *StudentHandler) StartQuiz(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	h.LogRequest(c, "Starting quiz attempt", "quiz_id", quizID)

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	resp, err := h.attemptService.Start(c.Request.Context(), quizID, caller.SubjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitAttempt grades the answers and completes the attempt
// @Summary Submit attempt
// @Tags student
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param answers body services.SubmitAttemptRequest true "Answers"
// @Success 200 {object} services.AttemptResult
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /student/attempts/{id}/submit [post]
func (h *StudentHandler) SubmitAttempt(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}
	h.LogRequest(c, "Submitting attempt", "attempt_id", attemptID)

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.SubmitAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), attemptID, caller.SubjectID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StudentHandler) ListAttempts(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	filters := repositories.AttemptFilters{
		Status:  models.AttemptStatus(c.Query("status")),
		Subject: c.Query("subject"),
	}
	if quizID := c.Query("quiz_id"); quizID != "" {
		filters.QuizID = &quizID
	}
	filters.Limit, filters.Offset = parsePage(c)
	filters.SortBy, filters.SortOrder = sortParams(c)

	resp, err := h.attemptService.ListByStudent(c.Request.Context(), caller.SubjectID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StudentHandler) GetAttempt(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	result, err := h.attemptService.GetResult(c.Request.Context(), attemptID, caller.SubjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
