package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/export"
	"fintrack/internal/services"
)

// ReportHandler renders transaction exports and monthly reports.
type ReportHandler struct {
	userService        services.UserServicer
	transactionService services.TransactionServicer
	budgetService      services.BudgetServicer
	goalService        services.GoalServicer
	holdingService     services.HoldingServicer
	insightsService    services.InsightsServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	userService services.UserServicer,
	transactionService services.TransactionServicer,
	budgetService services.BudgetServicer,
	goalService services.GoalServicer,
	holdingService services.HoldingServicer,
	insightsService services.InsightsServicer,
) *ReportHandler {
	return &ReportHandler{
		userService:        userService,
		transactionService: transactionService,
		budgetService:      budgetService,
		goalService:        goalService,
		holdingService:     holdingService,
		insightsService:    insightsService,
	}
}

// ExportTransactionsCSV streams the user's transactions as a CSV download
// @Summary     Export transactions CSV
// @Description Download the user's transactions as CSV, with the same filters as the transaction list
// @Tags        reports
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from_date query string false "Filter by start date (RFC3339, YYYY-MM-DD or DD-MM-YYYY)"
// @Param       to_date   query string false "Filter by end date (RFC3339, YYYY-MM-DD or DD-MM-YYYY)"
// @Param       type      query string false "Filter by transaction type (income, expense)"
// @Param       category  query string false "Filter by category"
// @Success     200 {string} string "CSV data"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/transactions.csv [get]
func (h *ReportHandler) ExportTransactionsCSV(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.transactionService.ListTransactions(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := export.TransactionsCSV(transactions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// GetMonthlyReport renders the monthly summary as an HTML page
// @Summary     Get monthly report
// @Description Render a printable HTML report for a month: totals, budgets, goals, and portfolio
// @Tags        reports
// @Produce     text/html
// @Security    BearerAuth
// @Param       month query string false "Month key (YYYY-MM, default current month)"
// @Success     200 {string} string "HTML report"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/monthly [get]
func (h *ReportHandler) GetMonthlyReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthKey := monthQuery(c)

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.insightsService.GetMonthSummary(userID, monthKey)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetMonthBudgets(userID, monthKey)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.GetUserGoals(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdings, err := h.holdingService.GetUserHoldings(userID, nil, nil)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := export.MonthlyHTML(export.MonthlyReport{
		Month:    monthKey,
		Currency: user.Currency(),
		Income:   summary.Income,
		Expense:  summary.Expense,
		Net:      summary.Net,
		Budgets:  budgets,
		Goals:    goals,
		Holdings: holdings,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="report-%s.html"`, monthKey))
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
