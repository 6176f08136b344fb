package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ImportExportService
}

func NewQuizHandler(quizService services.QuizService, exportService services.ImportExportService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
	}
}

// CreateQuiz creates a quiz from existing questions
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.CreateQuizRequest true "Quiz data"
// @Success 201 {object} SuccessResponse{data=services.QuizResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	h.LogRequest(c, "Creating quiz")

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.CreateQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Quiz created successfully", quiz)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// UpdateQuiz applies a partial update; status changes follow draft -> active -> archived.
// @Summary Update quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param quiz body services.UpdateQuizRequest true "Changed fields"
// @Success 200 {object} SuccessResponse{data=services.QuizResponse}
// @Failure 422 {object} ErrorResponse
// @Router /quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Updating quiz", "quiz_id", id)

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.UpdateQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz updated successfully", quiz)
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Deleting quiz", "quiz_id", id)

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	outcome, err := h.quizService.Delete(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	filters := repositories.QuizFilters{
		Subject: c.Query("subject"),
		Grade:   c.Query("grade"),
		Search:  c.Query("search"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.QuizStatus(raw)
		filters.Status = &status
	}
	filters.Limit, filters.Offset = parsePage(c)
	filters.SortBy, filters.SortOrder = sortParams(c)

	resp, err := h.quizService.List(c.Request.Context(), filters, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AssignQuiz assigns students to a quiz. Students already assigned are skipped.
// @Summary Assign quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param body body services.AssignQuizRequest true "Student IDs"
// @Success 200 {object} services.AssignResult
// @Router /quizzes/{id}/assign [post]
func (h *QuizHandler) AssignQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Assigning quiz", "quiz_id", id)

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.AssignQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.quizService.Assign(c.Request.Context(), id, req.StudentIDs, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) UnassignQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.AssignQuizRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.quizService.Unassign(c.Request.Context(), id, req.StudentIDs, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) GetQuizResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	from, okFrom := parseTimeQuery(c, "from")
	to, okTo := parseTimeQuery(c, "to")
	if !okFrom || !okTo {
		h.RespondWithError(c, http.StatusBadRequest, services.KindValidation, "Invalid date range", nil, "use RFC 3339 or YYYY-MM-DD")
		return
	}

	filters := repositories.AttemptFilters{DateFrom: from, DateTo: to}
	filters.Limit, filters.Offset = parsePage(c)
	filters.SortBy, filters.SortOrder = sortParams(c)

	resp, err := h.quizService.GetResults(c.Request.Context(), id, filters, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportQuizResults streams the quiz results as an xlsx workbook.
func (h *QuizHandler) ExportQuizResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Exporting quiz results", "quiz_id", id)

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportQuizResults(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz-%s-results-%s.xlsx", id, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
