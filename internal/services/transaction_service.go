package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction records a new income or expense event for the user.
func (s *transactionService) CreateTransaction(
	userID string,
	txType models.TransactionType,
	amount decimal.Decimal,
	category string,
	date time.Time,
	paymentMethod, notes string,
) (*models.Transaction, error) {
	if txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	if date.IsZero() {
		date = time.Now().UTC()
	}

	transaction := &models.Transaction{
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		Category:      normalizeCategory(category),
		Date:          date.UTC(),
		PaymentMethod: normalizePaymentMethod(paymentMethod),
		Notes:         notes,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListTransactions returns all of the user's transactions matching the
// filter, newest first. Used by the export endpoints.
func (s *transactionService) ListTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var transactions []models.Transaction
	if err := base.Order("date DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial update to an existing transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Type != nil {
		if *update.Type != models.TransactionTypeIncome && *update.Type != models.TransactionTypeExpense {
			return nil, apperrors.ErrInvalidTransactionType
		}
		updates["type"] = *update.Type
	}
	if update.Amount != nil {
		if update.Amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount"] = *update.Amount
	}
	if update.Category != nil {
		updates["category"] = normalizeCategory(*update.Category)
	}
	if update.Date != nil {
		updates["date"] = update.Date.UTC()
	}
	if update.PaymentMethod != nil {
		updates["payment_method"] = normalizePaymentMethod(*update.PaymentMethod)
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return transaction, nil
}

// DeleteTransaction soft-deletes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// normalizeCategory trims a category, falling back to the default bucket.
func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return models.DefaultCategory
	}
	return category
}

// normalizePaymentMethod lower-cases and underscores a payment method key,
// falling back to "other".
func normalizePaymentMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	method = strings.ReplaceAll(method, " ", "_")
	if method == "" {
		return "other"
	}
	return method
}
