package services

import (
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/month"
)

const (
	dashboardRecentTransactions = 5
	dashboardUnusualActivity    = 5
)

// insightsService aggregates transactions into monthly summaries and the
// combined dashboard payload.
type insightsService struct {
	db           *gorm.DB
	budgetAlerts BudgetAlertServicer
	holdings     HoldingServicer
}

// NewInsightsService creates a new InsightsServicer.
func NewInsightsService(db *gorm.DB, budgetAlerts BudgetAlertServicer, holdings HoldingServicer) InsightsServicer {
	return &insightsService{db: db, budgetAlerts: budgetAlerts, holdings: holdings}
}

// GetMonthSummary aggregates one month of transactions into totals, a daily
// income/expense series covering the days that saw activity, and an expense
// breakdown by category sorted largest first.
func (s *insightsService) GetMonthSummary(userID, monthKey string) (*MonthSummary, error) {
	start, end, err := month.Range(monthKey)
	if err != nil {
		return nil, apperrors.ErrInvalidMonth
	}

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &MonthSummary{Month: monthKey}

	// Only days with at least one transaction appear in the series.
	dailyByDate := make(map[string]*DailyPoint)
	point := func(date string) *DailyPoint {
		if p, ok := dailyByDate[date]; ok {
			return p
		}
		p := &DailyPoint{Date: date}
		dailyByDate[date] = p
		return p
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, txn := range transactions {
		day := point(month.DateKey(txn.Date))
		switch txn.Type {
		case models.TransactionTypeIncome:
			summary.Income = summary.Income.Add(txn.Amount)
			day.Income = day.Income.Add(txn.Amount)
		case models.TransactionTypeExpense:
			summary.Expense = summary.Expense.Add(txn.Amount)
			day.Expense = day.Expense.Add(txn.Amount)
			byCategory[txn.Category] = byCategory[txn.Category].Add(txn.Amount)
		}
	}
	summary.Net = summary.Income.Sub(summary.Expense)

	summary.Daily = make([]DailyPoint, 0, len(dailyByDate))
	for _, p := range dailyByDate {
		summary.Daily = append(summary.Daily, *p)
	}
	sort.Slice(summary.Daily, func(i, j int) bool {
		return summary.Daily[i].Date < summary.Daily[j].Date
	})

	summary.ExpenseByCategory = make([]CategoryAmount, 0, len(byCategory))
	for category, amount := range byCategory {
		summary.ExpenseByCategory = append(summary.ExpenseByCategory, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(summary.ExpenseByCategory, func(i, j int) bool {
		a, b := summary.ExpenseByCategory[i], summary.ExpenseByCategory[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.Category < b.Category
	})

	return summary, nil
}

// GetDashboard builds the combined insights payload for one month: the month
// summary, budget statuses with the subset currently near or over their limit,
// goal progress, a portfolio snapshot, the latest transactions, and recent
// unusual-activity notifications.
func (s *insightsService) GetDashboard(userID, monthKey string) (*Dashboard, error) {
	summary, err := s.GetMonthSummary(userID, monthKey)
	if err != nil {
		return nil, err
	}

	statuses, err := s.budgetAlerts.StatusForMonth(userID, monthKey)
	if err != nil {
		return nil, err
	}
	alerts := make([]BudgetStatus, 0)
	for _, status := range statuses {
		if status.State != BudgetStateOK {
			alerts = append(alerts, status)
		}
	}

	goals, err := s.goalProgress(userID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.holdings.GetUserHoldings(userID, nil, nil)
	if err != nil {
		return nil, err
	}

	var recent []models.Transaction
	err = s.db.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(dashboardRecentTransactions).
		Find(&recent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var unusual []models.Notification
	err = s.db.Where("user_id = ? AND kind = ?", userID, models.NotificationKindUnusualActivity).
		Order("created_at DESC").
		Limit(dashboardUnusualActivity).
		Find(&unusual).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &Dashboard{
		Month:         monthKey,
		Summary:       *summary,
		BudgetsStatus: statuses,
		BudgetAlerts:  alerts,
		GoalsProgress: goals,
		Portfolio: PortfolioSnapshot{
			Count:    len(holdings),
			Summary:  summarizeHoldings(holdings),
			Holdings: holdings,
		},
		RecentTransactions: recent,
		UnusualActivity:    unusual,
	}, nil
}

// goalProgress computes completion percentages for the user's active goals.
func (s *insightsService) goalProgress(userID string) ([]GoalProgress, error) {
	var goals []models.Goal
	err := s.db.Where("user_id = ? AND status = ?", userID, models.GoalStatusActive).
		Order("deadline ASC NULLS LAST").
		Find(&goals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	progress := make([]GoalProgress, 0, len(goals))
	for _, goal := range goals {
		percent := 0
		if goal.TargetAmount.IsPositive() {
			p, _ := goal.CurrentAmount.Div(goal.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
			percent = int(p)
			if percent > 100 {
				percent = 100
			}
		}
		progress = append(progress, GoalProgress{
			ID:            goal.ID,
			Title:         goal.Title,
			TargetAmount:  goal.TargetAmount,
			CurrentAmount: goal.CurrentAmount,
			Percent:       percent,
			Deadline:      goal.Deadline,
		})
	}
	return progress, nil
}
