package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService      services.BudgetServicer
	budgetAlertService services.BudgetAlertServicer
	auditService       services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, budgetAlertService services.BudgetAlertServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, budgetAlertService: budgetAlertService, auditService: auditService}
}

// UpsertBudgetRequest represents the request payload for creating or replacing a budget
type UpsertBudgetRequest struct {
	Category string          `json:"category" binding:"required,max=100"`
	Month    string          `json:"month" binding:"required,month_key"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// UpsertBudget creates or replaces the budget for a (category, month) pair
// @Summary     Upsert a budget
// @Description Create or replace the spending limit for a category in a month. Saving the same category twice updates the amount in place.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpsertBudgetRequest true "Budget details"
// @Success     200 {object} models.Budget "Budget saved"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [put]
func (h *BudgetHandler) UpsertBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpsertBudget(userID, req.Category, req.Month, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPSERT_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"category": budget.Category, "month": budget.Month, "amount": req.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetMonthBudgets lists the user's budgets for a month
// @Summary     Get month budgets
// @Description Get all budgets for a month (defaults to the current month)
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month key (YYYY-MM, default current month)"
// @Success     200 {array} models.Budget "Budgets"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetMonthBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetMonthBudgets(userID, monthQuery(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// GetBudgetStatus reports budget usage for a month
// @Summary     Get budget status
// @Description Get each budget for a month with its spend, remaining amount, and percent used
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month query string false "Month key (YYYY-MM, default current month)"
// @Success     200 {array} services.BudgetStatus "Budget statuses"
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/status [get]
func (h *BudgetHandler) GetBudgetStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	statuses, err := h.budgetAlertService.StatusForMonth(userID, monthQuery(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// DeleteBudget handles the deletion of a budget
// @Summary     Delete budget
// @Description Delete a budget by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}
