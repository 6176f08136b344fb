package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

func (h *ProgressHandler) GetOverview(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	overview, err := h.progressService.GetOverview(c.Request.Context(), caller.SubjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *ProgressHandler) GetStatistics(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	stats, err := h.progressService.GetStatistics(c.Request.Context(), caller.SubjectID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetChart returns per-attempt points for ?from=&to=&subject=.
func (h *ProgressHandler) GetChart(c *gin.Context) {
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

	chart, err := h.progressService.GetChart(c.Request.Context(), caller.SubjectID, services.ChartFilters{
		From:    from,
		To:      to,
		Subject: c.Query("subject"),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}
