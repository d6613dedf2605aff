package services

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// SettingsUpdate carries a partial settings document; nil fields are left
// untouched by UpdateSettings.
type SettingsUpdate struct {
	Preferences   *PreferencesUpdate          `json:"preferences,omitempty"`
	Notifications *NotificationSettingsUpdate `json:"notifications,omitempty"`
}

// PreferencesUpdate carries partial preference changes.
type PreferencesUpdate struct {
	Currency        *string `json:"currency,omitempty" binding:"omitempty,iso4217"`
	Timezone        *string `json:"timezone,omitempty"`
	DateFormat      *string `json:"date_format,omitempty"`
	StartOfMonthDay *int    `json:"start_of_month_day,omitempty" binding:"omitempty,min=1,max=28"`
}

// NotificationSettingsUpdate carries partial notification preference changes.
type NotificationSettingsUpdate struct {
	Enabled          *bool   `json:"enabled,omitempty"`
	BudgetAlerts     *bool   `json:"budget_alerts,omitempty"`
	BudgetThreshold  *int    `json:"budget_threshold,omitempty" binding:"omitempty,min=1,max=100"`
	GoalReminders    *bool   `json:"goal_reminders,omitempty"`
	GoalReminderDays *[]int  `json:"goal_reminder_days,omitempty"`
	MonthlySummary   *bool   `json:"monthly_summary,omitempty"`
	DigestTime       *string `json:"digest_time,omitempty"`
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	GetSettings(userID string) (models.Settings, error)
	UpdateSettings(userID string, update SettingsUpdate) (models.Settings, error)
	DeleteAccount(userID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Type     *models.TransactionType
	Category *string
	FromDate *time.Time
	ToDate   *time.Time
}

// TransactionUpdate carries a partial transaction change; nil fields are left
// untouched.
type TransactionUpdate struct {
	Type          *models.TransactionType
	Amount        *decimal.Decimal
	Category      *string
	Date          *time.Time
	PaymentMethod *string
	Notes         *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, txType models.TransactionType, amount decimal.Decimal, category string, date time.Time, paymentMethod, notes string) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	ListTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// BudgetServicer defines the contract for budget-related business logic.
// Budgets are written through an upsert keyed on (user, category, month).
type BudgetServicer interface {
	UpsertBudget(userID, category, monthKey string, amount decimal.Decimal) (*models.Budget, error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	GetMonthBudgets(userID, monthKey string) ([]models.Budget, error)
	DeleteBudget(userID, budgetID string) error
}

// BudgetState classifies spending against a budget limit.
type BudgetState string

const (
	BudgetStateOK   BudgetState = "ok"
	BudgetStateNear BudgetState = "near"
	BudgetStateOver BudgetState = "over"
)

// BudgetStatus is a budget with its computed usage for one month.
type BudgetStatus struct {
	Budget    models.Budget   `json:"budget"`
	Used      decimal.Decimal `json:"used"`
	Remaining decimal.Decimal `json:"remaining"`
	Percent   float64         `json:"percent"`
	Exceeded  bool            `json:"exceeded"`
	State     BudgetState     `json:"state"`
}

// BudgetAlertServicer evaluates budgets against spending and emits
// deduplicated threshold notifications.
type BudgetAlertServicer interface {
	StatusForMonth(userID, monthKey string) ([]BudgetStatus, error)
	RunForMonth(userID, monthKey string) error
	RunSweep(now time.Time) error
}

// GoalUpdate carries a partial goal change; nil fields are left untouched.
type GoalUpdate struct {
	Title         *string
	TargetAmount  *decimal.Decimal
	Deadline      *time.Time
	ClearDeadline bool
	Status        *models.GoalStatus
	Notes         *string
}

// GoalServicer defines the contract for savings-goal business logic.
type GoalServicer interface {
	CreateGoal(userID, title string, targetAmount decimal.Decimal, deadline *time.Time, notes string) (*models.Goal, error)
	GetUserGoals(userID string) ([]models.Goal, error)
	GetGoalByID(userID, goalID string) (*models.Goal, error)
	UpdateGoal(userID, goalID string, update GoalUpdate) (*models.Goal, error)
	AddAmount(userID, goalID string, amount decimal.Decimal) (*models.Goal, error)
	DeleteGoal(userID, goalID string) error
}

// GoalReminderServicer sweeps goals with deadlines and emits deduplicated
// reminder and overdue notifications.
type GoalReminderServicer interface {
	RunSweep(now time.Time) error
}

// HoldingInput carries the full set of writable holding fields.
type HoldingInput struct {
	HoldingType  models.HoldingType
	Allocation   models.Allocation
	Name         string
	Symbol       string
	Notes        string
	BuyPrice     decimal.Decimal
	Quantity     decimal.Decimal
	CurrentValue decimal.Decimal
}

// PortfolioSummary contains aggregated holding data across a user's portfolio.
type PortfolioSummary struct {
	InvestedTotal     decimal.Decimal                       `json:"invested_total"`
	CurrentValueTotal decimal.Decimal                       `json:"current_value_total"`
	ProfitLoss        decimal.Decimal                       `json:"profit_loss"`
	ProfitLossPct     float64                               `json:"profit_loss_pct"`
	Allocation        map[models.Allocation]decimal.Decimal `json:"allocation"`
}

// HoldingServicer defines the contract for investment-holding business logic.
type HoldingServicer interface {
	CreateHolding(userID string, input HoldingInput) (*models.Holding, error)
	GetUserHoldings(userID string, holdingType *models.HoldingType, allocation *models.Allocation) ([]models.Holding, error)
	GetHoldingByID(userID, holdingID string) (*models.Holding, error)
	UpdateHolding(userID, holdingID string, input HoldingInput) (*models.Holding, error)
	DeleteHolding(userID, holdingID string) error
	GetPortfolioSummary(userID string) (*PortfolioSummary, error)
}

// NotificationServicer is the deduplicated notification sink. UpsertIfAbsent
// reports whether a new row was inserted; a dedupe-key collision is not an
// error.
type NotificationServicer interface {
	UpsertIfAbsent(notification *models.Notification) (bool, error)
	GetUserNotifications(userID string, page pagination.PageRequest, read *bool) (*pagination.PageResponse[models.Notification], error)
	UnreadCount(userID string) (int64, error)
	MarkRead(userID, notificationID string) error
	MarkAllRead(userID string) (int64, error)
}

// AnomalyType identifies which statistical check flagged a transaction.
type AnomalyType string

const (
	AnomalyHighValue      AnomalyType = "HIGH_VALUE"
	AnomalyCategorySpike  AnomalyType = "CATEGORY_SPIKE"
	AnomalyFrequencySpike AnomalyType = "FREQUENCY_SPIKE"
)

// Anomaly is a single flagged irregularity with the numbers that justified it.
type Anomaly struct {
	Type     AnomalyType     `json:"type"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Severity models.Severity `json:"severity"`
	Meta     map[string]any  `json:"meta"`
}

// AnomalyServicer runs statistical checks over recent expense history.
type AnomalyServicer interface {
	Detect(userID string, txn *models.Transaction) ([]Anomaly, error)
	DetectAndNotify(userID string, txn *models.Transaction) error
}

// DailyPoint is one day of the month's income/expense series.
type DailyPoint struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryAmount is one slice of the expense-by-category breakdown.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthSummary is the aggregated view of one month of transactions.
type MonthSummary struct {
	Month             string           `json:"month"`
	Income            decimal.Decimal  `json:"income"`
	Expense           decimal.Decimal  `json:"expense"`
	Net               decimal.Decimal  `json:"net"`
	Daily             []DailyPoint     `json:"daily"`
	ExpenseByCategory []CategoryAmount `json:"expense_by_category"`
}

// GoalProgress is a goal with its computed completion percentage.
type GoalProgress struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Percent       int             `json:"percent"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
}

// PortfolioSnapshot is the light portfolio card on the dashboard.
type PortfolioSnapshot struct {
	Count    int              `json:"count"`
	Summary  PortfolioSummary `json:"summary"`
	Holdings []models.Holding `json:"holdings"`
}

// Dashboard is the combined insights payload for one month.
type Dashboard struct {
	Month              string                `json:"month"`
	Summary            MonthSummary          `json:"summary"`
	BudgetsStatus      []BudgetStatus        `json:"budgets_status"`
	BudgetAlerts       []BudgetStatus        `json:"budget_alerts"`
	GoalsProgress      []GoalProgress        `json:"goals_progress"`
	Portfolio          PortfolioSnapshot     `json:"portfolio"`
	RecentTransactions []models.Transaction  `json:"recent_transactions"`
	UnusualActivity    []models.Notification `json:"unusual_activity"`
}

// InsightsServicer aggregates transactions into monthly summaries and the
// combined dashboard payload.
type InsightsServicer interface {
	GetMonthSummary(userID, monthKey string) (*MonthSummary, error)
	GetDashboard(userID, monthKey string) (*Dashboard, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
