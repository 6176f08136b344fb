package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse is the body of every failed request. Code is the stable error kind.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var statusByKind = map[services.ErrorKind]int{
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindInvalidState:    http.StatusUnprocessableEntity,
	services.KindConflict:        http.StatusConflict,
	services.KindValidation:      http.StatusBadRequest,
	services.KindInternal:        http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind services.ErrorKind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides request logging and error rendering for all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) requestFields(c *gin.Context, extra []interface{}) []interface{} {
	fields := []interface{}{
		"request_id", c.GetString(requestIDKey),
		"user_id", c.GetString(userIDKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	return append(fields, extra...)
}

// LogRequest logs the start of a handler with caller context.
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Info(message, h.requestFields(c, additionalFields)...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, h.requestFields(c, additionalFields)...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Warn(message, h.requestFields(c, additionalFields)...)
}

// RespondWithError sends a consistent error response and logs it.
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code services.ErrorKind, message string, err error, details ...interface{}) {
	resp := ErrorResponse{Message: message, Code: string(code)}
	if len(details) > 0 {
		resp.Details = details[0]
	}

	if statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}
	c.AbortWithStatusJSON(statusCode, resp)
}

func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{Message: message, Data: data})
}

// handleServiceError renders any service error by its kind.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status := StatusFor(kind)

	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, status, kind, "Validation failed", err, validationErrors)
		return
	}
	var single *services.ValidationError
	if errors.As(err, &single) {
		h.RespondWithError(c, status, kind, "Validation failed", err, services.ValidationErrors{*single})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, status, kind, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, status, kind, "Access denied", err, map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	if kind == services.KindInternal {
		h.RespondWithError(c, status, kind, "Internal server error", err)
		return
	}
	h.RespondWithError(c, status, kind, publicMessage(err), err)
}

// publicMessage returns the innermost error text so wrapping context stays out of responses.
func publicMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// bindJSON decodes the body into req and answers 400 on malformed input.
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, services.KindValidation, "Invalid request payload", err, err.Error())
		return false
	}
	return true
}

// identity returns the authenticated caller. Routes using it sit behind Authenticate.
func (h *BaseHandler) identity(c *gin.Context) (auth.Identity, bool) {
	identity, ok := IdentityFrom(c)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, services.KindUnauthenticated, "User not authenticated", nil)
	}
	return identity, ok
}
