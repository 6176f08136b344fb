package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestion creates a new question in the caller's bank
// @Summary Create question
// @Tags questions
// @Accept json
// @Produce json
// @Param question body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} SuccessResponse{data=models.Question}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Question created successfully", question)
}

// GetQuestion returns a single question
// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Updating question", "question_id", id)

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.UpdateQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Question updated successfully", question)
}

// DeleteQuestion removes an unreferenced question or deactivates one still used by a quiz.
// @Summary Delete question
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} services.DeleteOutcome
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Deleting question", "question_id", id)

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	outcome, err := h.questionService.Delete(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// ListQuestions supports ?type=&difficulty=&subject=&grade=&is_active=&search=&page=&size=&sort_by=&sort_order=
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	filters := repositories.QuestionFilters{
		Subject:  c.Query("subject"),
		Grade:    c.Query("grade"),
		IsActive: parseBoolQuery(c, "is_active"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("type"); raw != "" {
		questionType := models.QuestionType(raw)
		filters.Type = &questionType
	}
	if raw := c.Query("difficulty"); raw != "" {
		difficulty := models.DifficultyLevel(raw)
		filters.Difficulty = &difficulty
	}
	filters.Limit, filters.Offset = parsePage(c)
	filters.SortBy, filters.SortOrder = sortParams(c)

	resp, err := h.questionService.List(c.Request.Context(), filters, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
