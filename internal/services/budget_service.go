package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/month"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// UpsertBudget creates or replaces the budget for (user, category, month).
// A conflict on the uniqueness constraint updates the amount in place, so
// saving the same category twice in a month is not an error.
func (s *budgetService) UpsertBudget(userID, category, monthKey string, amount decimal.Decimal) (*models.Budget, error) {
	if !month.Valid(monthKey) {
		return nil, apperrors.ErrInvalidMonth
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	category = normalizeCategory(category)

	budget := &models.Budget{
		UserID:   userID,
		Category: category,
		Month:    monthKey,
		Amount:   amount,
	}

	// The conflict path also clears deleted_at so re-creating a previously
	// deleted budget revives the surviving row.
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "category"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount":     amount,
			"updated_at": time.Now().UTC(),
			"deleted_at": nil,
		}),
	}).Create(budget).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Re-read so the caller sees the surviving row (the conflict path keeps
	// the original ID).
	var saved models.Budget
	if err := s.db.Where("user_id = ? AND category = ? AND month = ?", userID, category, monthKey).First(&saved).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &saved, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetMonthBudgets returns all of the user's budgets for a month.
func (s *budgetService) GetMonthBudgets(userID, monthKey string) ([]models.Budget, error) {
	if !month.Valid(monthKey) {
		return nil, apperrors.ErrInvalidMonth
	}

	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND month = ?", userID, monthKey).Order("category").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
