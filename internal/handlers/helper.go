package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
			Code:    string(services.KindValidation),
		})
		return ""
	}
	return idStr
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(param))
	if err != nil {
		return defaultValue
	}
	return value
}

// parsePage turns ?page=&size= into a limit/offset pair.
func parsePage(c *gin.Context) (limit, offset int) {
	page := parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit, _ = services.NormalizePage(parseIntQuery(c, "size", models.DefaultPageSize), 0)
	return limit, (page - 1) * limit
}

func parseBoolQuery(c *gin.Context, param string) *bool {
	value, err := strconv.ParseBool(c.Query(param))
	if err != nil {
		return nil
	}
	return &value
}

// parseTimeQuery accepts RFC 3339 timestamps and plain dates. ok is false on a malformed value.
func parseTimeQuery(c *gin.Context, param string) (t *time.Time, ok bool) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}

func sortParams(c *gin.Context) (string, string) {
	return c.Query("sort_by"), strings.ToLower(c.Query("sort_order"))
}
