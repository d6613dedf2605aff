package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/month"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	budgetAlertService services.BudgetAlertServicer
	anomalyService     services.AnomalyServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(
	transactionService services.TransactionServicer,
	budgetAlertService services.BudgetAlertServicer,
	anomalyService services.AnomalyServicer,
	auditService services.AuditServicer,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		budgetAlertService: budgetAlertService,
		anomalyService:     anomalyService,
		auditService:       auditService,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Type          models.TransactionType `json:"type" binding:"required,transaction_type"`
	Amount        decimal.Decimal        `json:"amount" binding:"required"`
	Category      string                 `json:"category" binding:"max=100"`
	Date          *string                `json:"date"`
	PaymentMethod string                 `json:"payment_method" binding:"omitempty,payment_method"`
	Notes         string                 `json:"notes" binding:"max=500"`
}

// TransactionResponse represents a transaction in the response
type TransactionResponse struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	Type          models.TransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	Category      string                 `json:"category"`
	Date          time.Time              `json:"date"`
	PaymentMethod string                 `json:"payment_method"`
	Notes         string                 `json:"notes"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create a new income or expense transaction. Expense transactions trigger budget and anomaly evaluation in the background.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transactionDate := time.Now().UTC()
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := month.ParseDate(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		transactionDate = parsed
	}

	transaction, err := h.transactionService.CreateTransaction(
		userID,
		req.Type,
		req.Amount,
		req.Category,
		transactionDate,
		req.PaymentMethod,
		req.Notes,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "amount": req.Amount.String(), "category": transaction.Category})

	// Evaluation runs off the request path. The dedupe keys make it safe to
	// race with the background sweeps.
	if transaction.Type == models.TransactionTypeExpense {
		go h.evaluate(userID, transaction)
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// evaluate runs the budget and anomaly checks for a freshly created expense.
func (h *TransactionHandler) evaluate(userID string, transaction *models.Transaction) {
	monthKey := month.Key(transaction.Date)
	if err := h.budgetAlertService.RunForMonth(userID, monthKey); err != nil {
		logger.Get().Errorw("budget evaluation failed",
			"user_id", userID,
			"month", monthKey,
			"error", err,
		)
	}
	if err := h.anomalyService.DetectAndNotify(userID, transaction); err != nil {
		logger.Get().Errorw("anomaly detection failed",
			"user_id", userID,
			"transaction_id", transaction.ID,
			"error", err,
		)
	}
}

// GetUserTransactions handles the retrieval of all transactions for the authenticated user
// @Summary     Get user transactions
// @Description Get a paginated list of the user's transactions with optional filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       from_date query string false "Filter by start date (RFC3339, YYYY-MM-DD or DD-MM-YYYY)"
// @Param       to_date   query string false "Filter by end date (RFC3339, YYYY-MM-DD or DD-MM-YYYY)"
// @Param       type      query string false "Filter by transaction type (income, expense)"
// @Param       category  query string false "Filter by category"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := month.ParseDate(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := month.ParseDate(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeIncome, models.TransactionTypeExpense:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income or expense")
		}
	}

	if v := c.Query("category"); v != "" {
		category := v
		filter.Category = &category
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionResponse "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	Type          *models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Amount        *decimal.Decimal        `json:"amount"`
	Category      *string                 `json:"category" binding:"omitempty,max=100"`
	Date          *string                 `json:"date"`
	PaymentMethod *string                 `json:"payment_method" binding:"omitempty,payment_method"`
	Notes         *string                 `json:"notes" binding:"omitempty,max=500"`
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Update an existing transaction. Omitted fields are left unchanged.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                    true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} TransactionResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.TransactionUpdate{
		Type:          req.Type,
		Amount:        req.Amount,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}

	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := month.ParseDate(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		update.Date = &parsed
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, txID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", txID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
