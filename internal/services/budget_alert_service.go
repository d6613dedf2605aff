package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/month"
)

// budgetAlertService evaluates monthly category budgets against spending and
// pushes threshold notifications through the deduplicated sink.
type budgetAlertService struct {
	db            *gorm.DB
	users         UserServicer
	notifications NotificationServicer
}

// NewBudgetAlertService creates a new BudgetAlertServicer.
func NewBudgetAlertService(db *gorm.DB, users UserServicer, notifications NotificationServicer) BudgetAlertServicer {
	return &budgetAlertService{db: db, users: users, notifications: notifications}
}

// StatusForMonth computes usage for every budget the user has in the month.
// The near/over classification uses the user's configured warning threshold.
func (s *budgetAlertService) StatusForMonth(userID, monthKey string) ([]BudgetStatus, error) {
	if !month.Valid(monthKey) {
		return nil, apperrors.ErrInvalidMonth
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	threshold := warningThreshold(user)

	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND month = ?", userID, monthKey).Order("category").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent, err := s.expenseByCategory(userID, monthKey)
	if err != nil {
		return nil, err
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		statuses = append(statuses, buildStatus(budget, spent[budget.Category], threshold))
	}
	return statuses, nil
}

// RunForMonth evaluates the user's budgets for the month and emits warning and
// exceeded notifications. Dedupe keys carry the budget, month, and threshold,
// so re-running the evaluation never duplicates an alert, while a changed
// threshold is allowed to fire again.
func (s *budgetAlertService) RunForMonth(userID, monthKey string) error {
	if !month.Valid(monthKey) {
		return apperrors.ErrInvalidMonth
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !user.Settings.Notifications.Enabled || !user.Settings.Notifications.BudgetAlerts {
		return nil
	}

	statuses, err := s.StatusForMonth(userID, monthKey)
	if err != nil {
		return err
	}

	threshold := warningThreshold(user)
	for _, status := range statuses {
		if status.Exceeded {
			notification := &models.Notification{
				UserID:    userID,
				Kind:      models.NotificationKindBudgetExceeded,
				Title:     fmt.Sprintf("Budget exceeded: %s", status.Budget.Category),
				Message:   fmt.Sprintf("You have spent %s of your %s budget of %s for %s.", status.Used.StringFixed(2), status.Budget.Category, status.Budget.Amount.StringFixed(2), monthKey),
				Severity:  models.SeverityCritical,
				DedupeKey: fmt.Sprintf("budget:%s:%s:100", status.Budget.ID, monthKey),
				Meta: map[string]any{
					"budget_id": status.Budget.ID,
					"category":  status.Budget.Category,
					"month":     monthKey,
					"used":      status.Used.String(),
					"limit":     status.Budget.Amount.String(),
					"percent":   status.Percent,
				},
			}
			if _, err := s.notifications.UpsertIfAbsent(notification); err != nil {
				return err
			}
			continue
		}

		if status.State == BudgetStateNear {
			notification := &models.Notification{
				UserID:    userID,
				Kind:      models.NotificationKindBudgetWarning,
				Title:     fmt.Sprintf("Budget warning: %s", status.Budget.Category),
				Message:   fmt.Sprintf("You have used %.0f%% of your %s budget for %s.", status.Percent, status.Budget.Category, monthKey),
				Severity:  models.SeverityWarning,
				DedupeKey: fmt.Sprintf("budget:%s:%s:%d", status.Budget.ID, monthKey, threshold),
				Meta: map[string]any{
					"budget_id": status.Budget.ID,
					"category":  status.Budget.Category,
					"month":     monthKey,
					"used":      status.Used.String(),
					"limit":     status.Budget.Amount.String(),
					"percent":   status.Percent,
					"threshold": threshold,
				},
			}
			if _, err := s.notifications.UpsertIfAbsent(notification); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunSweep evaluates the current month's budgets for every user that has any.
// Per-user failures are logged and do not stop the sweep.
func (s *budgetAlertService) RunSweep(now time.Time) error {
	monthKey := month.Key(now)

	var userIDs []string
	if err := s.db.Model(&models.Budget{}).
		Where("month = ?", monthKey).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, userID := range userIDs {
		if err := s.RunForMonth(userID, monthKey); err != nil {
			logger.Get().Errorw("Budget sweep failed for user",
				"user_id", userID,
				"month", monthKey,
				"error", err,
			)
		}
	}
	return nil
}

// expenseByCategory sums the user's expenses for the month, grouped by
// category.
func (s *budgetAlertService) expenseByCategory(userID, monthKey string) (map[string]decimal.Decimal, error) {
	start, end, err := month.Range(monthKey)
	if err != nil {
		return nil, apperrors.ErrInvalidMonth
	}

	var rows []struct {
		Category string
		Total    decimal.Decimal
	}
	err = s.db.Model(&models.Transaction{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?", userID, models.TransactionTypeExpense, start, end).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		spent[row.Category] = row.Total
	}
	return spent, nil
}

// buildStatus computes the usage numbers and state for one budget.
func buildStatus(budget models.Budget, used decimal.Decimal, threshold int) BudgetStatus {
	status := BudgetStatus{
		Budget:    budget,
		Used:      used,
		Remaining: budget.Amount.Sub(used),
		State:     BudgetStateOK,
	}
	if budget.Amount.IsPositive() {
		pct, _ := used.Div(budget.Amount).Mul(decimal.NewFromInt(100)).Float64()
		status.Percent = pct
	}
	switch {
	case status.Percent >= 100:
		status.Exceeded = true
		status.State = BudgetStateOver
	case status.Percent >= float64(threshold):
		status.State = BudgetStateNear
	}
	return status
}

// warningThreshold returns the user's budget warning percentage clamped to
// [1,99]. 100 would make the warning coincide with the exceeded alert, so the
// warning band is kept strictly below it.
func warningThreshold(user *models.User) int {
	threshold := user.Settings.Notifications.BudgetThreshold
	if threshold <= 0 {
		threshold = models.DefaultBudgetThreshold
	}
	return clampInt(threshold, 1, 99)
}
