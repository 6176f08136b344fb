package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type TeacherHandler struct {
	BaseHandler
	teacherService services.TeacherService
}

func NewTeacherHandler(teacherService services.TeacherService, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler:    NewBaseHandler(logger),
		teacherService: teacherService,
	}
}

func (h *TeacherHandler) GetDashboard(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	dashboard, err := h.teacherService.GetDashboard(c.Request.Context(), caller.SubjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ListStudents lists students assigned to any of the caller's quizzes.
func (h *TeacherHandler) ListStudents(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	filters := repositories.UserFilters{
		Search:   c.Query("search"),
		IsActive: parseBoolQuery(c, "is_active"),
	}
	filters.Limit, filters.Offset = parsePage(c)
	filters.SortBy, filters.SortOrder = sortParams(c)

	resp, err := h.teacherService.ListStudents(c.Request.Context(), caller.SubjectID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
