package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/services"
)

// InsightsHandler handles monthly summary and dashboard requests.
type InsightsHandler struct {
	insightsService services.InsightsServicer
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(insightsService services.InsightsServicer) *InsightsHandler {
	return &InsightsHandler{insightsService: insightsService}
}

// GetMonthSummary returns aggregated totals for one month
// @Summary     Get month summary
// @Description Get income/expense totals, the daily series, and the expense-by-category breakdown for a month
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month key (YYYY-MM, default current month)"
// @Success     200 {object} services.MonthSummary "Month summary"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/summary [get]
func (h *InsightsHandler) GetMonthSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.insightsService.GetMonthSummary(userID, monthQuery(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetDashboard returns the combined dashboard payload
// @Summary     Get dashboard
// @Description Get the month summary, budget statuses, goal progress, portfolio snapshot, recent transactions, and recent unusual-activity alerts in one payload
// @Tags        insights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month key (YYYY-MM, default current month)"
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /insights/dashboard [get]
func (h *InsightsHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.insightsService.GetDashboard(userID, monthQuery(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
