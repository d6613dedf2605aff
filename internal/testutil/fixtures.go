package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fintrack/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password, unique email, and
// default settings.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         fmt.Sprintf("Test User %d", nextID()),
		Email:        email,
		PasswordHash: string(hash),
		Settings:     models.DefaultSettings(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// UpdateTestUserSettings persists a modified settings document for a user.
func UpdateTestUserSettings(t *testing.T, db *gorm.DB, user *models.User, settings models.Settings) {
	t.Helper()

	user.Settings = settings
	if err := db.Model(user).Update("settings", settings).Error; err != nil {
		t.Fatalf("failed to update test user settings: %v", err)
	}
}

// CreateTestTransaction creates a transaction of the given type, category, and
// amount on the given date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, category string, amount decimal.Decimal, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		Category:      category,
		Date:          date.UTC(),
		PaymentMethod: "other",
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestExpense creates an expense transaction from a float amount.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, category string, amount float64, date time.Time) *models.Transaction {
	t.Helper()
	return CreateTestTransaction(t, db, userID, models.TransactionTypeExpense, category, decimal.NewFromFloat(amount), date)
}

// CreateTestBudget creates a budget for the given category and month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, category, monthKey string, amount float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:   userID,
		Category: category,
		Month:    monthKey,
		Amount:   decimal.NewFromFloat(amount),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates an active goal with the given target and deadline.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, target float64, deadline *time.Time) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:       userID,
		Title:        fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount: decimal.NewFromFloat(target),
		Deadline:     deadline,
		Status:       models.GoalStatusActive,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestHolding creates a holding with the given buy price, quantity, and
// current value.
func CreateTestHolding(t *testing.T, db *gorm.DB, userID string, buyPrice, quantity, currentValue float64) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		UserID:       userID,
		HoldingType:  models.HoldingTypeStock,
		Allocation:   models.AllocationEquity,
		Name:         fmt.Sprintf("Test Holding %d", nextID()),
		BuyPrice:     decimal.NewFromFloat(buyPrice),
		Quantity:     decimal.NewFromFloat(quantity),
		CurrentValue: decimal.NewFromFloat(currentValue),
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateTestNotification creates a notification with a unique dedupe key.
func CreateTestNotification(t *testing.T, db *gorm.DB, userID string, kind models.NotificationKind) *models.Notification {
	t.Helper()

	notification := &models.Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     fmt.Sprintf("Test %d", nextID()),
		Message:   "test notification",
		Severity:  models.SeverityInfo,
		DedupeKey: fmt.Sprintf("test:%d", nextID()),
	}
	if err := db.Create(notification).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return notification
}
