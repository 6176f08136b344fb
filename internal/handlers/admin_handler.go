package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const maxImportFileSize = 5 << 20

type AdminHandler struct {
	BaseHandler
	userService   services.UserService
	importService services.ImportExportService
	auditService  services.AuditService
}

func NewAdminHandler(
	userService services.UserService,
	importService services.ImportExportService,
	auditService services.AuditService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:   NewBaseHandler(logger),
		userService:   userService,
		importService: importService,
		auditService:  auditService,
	}
}

// ListUsers supports ?role=&is_active=&search=&page=&size=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{
		IsActive: parseBoolQuery(c, "is_active"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, services.KindValidation, "Invalid role filter", err, raw)
			return
		}
		filters.Role = &role
	}
	filters.Limit, filters.Offset = parsePage(c)
	filters.SortBy, filters.SortOrder = sortParams(c)

	resp, err := h.userService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// InviteTeacher creates a teacher account with a temporary password and emails the invite
// @Summary Invite teacher
// @Tags admin
// @Accept json
// @Produce json
// @Param body body services.InviteTeacherRequest true "Teacher data"
// @Success 201 {object} services.InviteTeacherResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/teachers [post]
func (h *AdminHandler) InviteTeacher(c *gin.Context) {
	h.LogRequest(c, "Inviting teacher")

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.InviteTeacherRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.userService.InviteTeacher(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID := ParseStringIDParam(c, "id")
	if userID == "" {
		return
	}
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req services.UpdateUserStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.IsActive == nil {
		h.RespondWithError(c, http.StatusBadRequest, services.KindValidation, "is_active is required", nil)
		return
	}

	user, err := h.userService.SetStatus(c.Request.Context(), userID, *req.IsActive, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID := ParseStringIDParam(c, "id")
	if userID == "" {
		return
	}
	h.LogRequest(c, "Deleting user", "target_user_id", userID)

	caller, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), userID, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.MessageResponse{Message: "User deleted successfully"})
}

// ImportStudents accepts a multipart "file" field holding a .csv or .xlsx roster.
func (h *AdminHandler) ImportStudents(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, services.KindValidation, "File is required", err)
		return
	}
	if header.Size > maxImportFileSize {
		h.RespondWithError(c, http.StatusBadRequest, services.KindValidation, "File too large", nil, "maximum size is 5MB")
		return
	}
	h.LogRequest(c, "Importing students", "filename", header.Filename, "size", header.Size)

	file, err := header.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, services.KindValidation, "Unable to read file", err)
		return
	}
	defer file.Close()

	result, err := h.importService.ImportStudents(c.Request.Context(), header.Filename, file, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	from, okFrom := parseTimeQuery(c, "from")
	to, okTo := parseTimeQuery(c, "to")
	if !okFrom || !okTo {
		h.RespondWithError(c, http.StatusBadRequest, services.KindValidation, "Invalid date range", nil, "use RFC 3339 or YYYY-MM-DD")
		return
	}

	filters := repositories.AuditFilters{DateFrom: from, DateTo: to}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if raw := c.Query("action"); raw != "" {
		action := models.AuditAction(raw)
		filters.Action = &action
	}
	if raw := c.Query("entity_type"); raw != "" {
		entity := models.AuditEntity(raw)
		filters.EntityType = &entity
	}
	filters.Limit, filters.Offset = parsePage(c)

	logs, pagination, err := h.auditService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "pagination": pagination})
}
