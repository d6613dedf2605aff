package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestUpsertBudget(t *testing.T) {
	t.Run("creates_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.UpsertBudget(user.ID, "Food", "2026-09", decimal.NewFromInt(1000))
		testutil.AssertNoError(t, err)
		if budget.ID == "" {
			t.Fatal("budget should have an ID")
		}
		if budget.Category != "Food" || budget.Month != "2026-09" {
			t.Errorf("unexpected budget: %s %s", budget.Category, budget.Month)
		}
	})

	t.Run("second_write_updates_in_place", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		first, err := svc.UpsertBudget(user.ID, "Food", "2026-09", decimal.NewFromInt(1000))
		testutil.AssertNoError(t, err)

		second, err := svc.UpsertBudget(user.ID, "Food", "2026-09", decimal.NewFromInt(1500))
		testutil.AssertNoError(t, err)

		if second.ID != first.ID {
			t.Errorf("expected the same row to survive, got %s then %s", first.ID, second.ID)
		}
		if !second.Amount.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("expected amount 1500, got %s", second.Amount)
		}

		var count int64
		db.Model(&models.Budget{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 budget, got %d", count)
		}
	})

	t.Run("revives_deleted_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		first, err := svc.UpsertBudget(user.ID, "Food", "2026-09", decimal.NewFromInt(1000))
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, svc.DeleteBudget(user.ID, first.ID))

		revived, err := svc.UpsertBudget(user.ID, "Food", "2026-09", decimal.NewFromInt(800))
		testutil.AssertNoError(t, err)
		if revived.ID != first.ID {
			t.Errorf("expected the deleted row to be revived, got %s then %s", first.ID, revived.ID)
		}
		if !revived.Amount.Equal(decimal.NewFromInt(800)) {
			t.Errorf("expected amount 800, got %s", revived.Amount)
		}
		if revived.DeletedAt.Valid {
			t.Error("revived budget should not be soft-deleted")
		}
	})

	t.Run("same_category_different_months", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpsertBudget(user.ID, "Food", "2026-09", decimal.NewFromInt(1000))
		testutil.AssertNoError(t, err)
		_, err = svc.UpsertBudget(user.ID, "Food", "2026-10", decimal.NewFromInt(1200))
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Budget{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 2 {
			t.Errorf("expected 2 budgets, got %d", count)
		}
	})

	t.Run("invalid_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpsertBudget(user.ID, "Food", "September 2026", decimal.NewFromInt(1000))
		testutil.AssertAppError(t, err, "INVALID_MONTH")
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpsertBudget(user.ID, "Food", "2026-09", decimal.Zero)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.UpsertBudget(user.ID, "Food", "2026-09", decimal.NewFromInt(-10))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetMonthBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db)
	user1 := testutil.CreateTestUser(t, db)
	user2 := testutil.CreateTestUser(t, db)

	testutil.CreateTestBudget(t, db, user1.ID, "Travel", "2026-09", 500)
	testutil.CreateTestBudget(t, db, user1.ID, "Food", "2026-09", 1000)
	testutil.CreateTestBudget(t, db, user1.ID, "Food", "2026-10", 1000)
	testutil.CreateTestBudget(t, db, user2.ID, "Food", "2026-09", 1000)

	budgets, err := svc.GetMonthBudgets(user1.ID, "2026-09")
	testutil.AssertNoError(t, err)
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(budgets))
	}
	// Ordered by category.
	if budgets[0].Category != "Food" || budgets[1].Category != "Travel" {
		t.Errorf("expected Food then Travel, got %s then %s", budgets[0].Category, budgets[1].Category)
	}
}

func TestDeleteBudget(t *testing.T) {
	t.Run("deletes_own_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, "Food", "2026-09", 1000)

		testutil.AssertNoError(t, svc.DeleteBudget(user.ID, budget.ID))

		_, err := svc.GetBudgetByID(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("not_found_for_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user1.ID, "Food", "2026-09", 1000)

		err := svc.DeleteBudget(user2.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}
