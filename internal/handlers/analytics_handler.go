package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnsphere/lms-service/internal/auth"
	"github.com/learnsphere/lms-service/internal/services"
	"github.com/learnsphere/lms-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
	}
}

// GetQuizReport returns the aggregated statistics report for a quiz
// @Summary Quiz statistics report
// @Tags analytics
// @Produce json
// @Param quiz_id path uint true "Quiz ID"
// @Success 200 {object} services.QuizReport
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /analytics/quizzes/{quiz_id} [get]
func (h *AnalyticsHandler) GetQuizReport(c *gin.Context) {
	quizID := parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	report, err := h.analyticsService.GetQuizReport(c.Request.Context(), quizID, auth.UserIDFromContext(c), auth.RoleFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportQuizReport streams the report as a CSV or XLSX download, selected by
// the format query param (csv default).
func (h *AnalyticsHandler) ExportQuizReport(c *gin.Context) {
	quizID := parseIDParam(c, "quiz_id")
	if quizID == 0 {
		return
	}

	userID := auth.UserIDFromContext(c)
	role := auth.RoleFromContext(c)

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		raw, err := h.analyticsService.ExportQuizReportCSV(c.Request.Context(), quizID, userID, role)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quiz_%d_report.csv", quizID))
		c.Data(http.StatusOK, "text/csv", raw)

	case "xlsx":
		raw, err := h.analyticsService.ExportQuizReportXLSX(c.Request.Context(), quizID, userID, role)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quiz_%d_report.xlsx", quizID))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", raw)

	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid format",
			Details: "supported formats: csv, xlsx",
		})
	}
}
