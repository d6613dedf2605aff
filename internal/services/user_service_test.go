package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("creates_user_with_defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("Alice", "Alice@Example.com", "password123")
		testutil.AssertNoError(t, err)
		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
		if user.PasswordHash == "password123" {
			t.Error("password should be hashed")
		}
		if !user.Settings.Notifications.Enabled {
			t.Error("notifications should be enabled by default")
		}
		if user.Settings.Notifications.BudgetThreshold != models.DefaultBudgetThreshold {
			t.Errorf("expected default threshold, got %d", user.Settings.Notifications.BudgetThreshold)
		}
		if !svc.VerifyPassword(user, "password123") {
			t.Error("password verification should succeed")
		}
		if svc.VerifyPassword(user, "wrong") {
			t.Error("wrong password should fail verification")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("Alice", "alice@example.com", "password123")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("Other Alice", "ALICE@example.com", "password456")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("", "alice@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateSettings(t *testing.T) {
	t.Run("partial_update_preserves_rest", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		currency := "usd"
		threshold := 90
		settings, err := svc.UpdateSettings(user.ID, SettingsUpdate{
			Preferences:   &PreferencesUpdate{Currency: &currency},
			Notifications: &NotificationSettingsUpdate{BudgetThreshold: &threshold},
		})
		testutil.AssertNoError(t, err)

		if settings.Preferences.Currency != "USD" {
			t.Errorf("expected currency normalized to USD, got %s", settings.Preferences.Currency)
		}
		if settings.Notifications.BudgetThreshold != 90 {
			t.Errorf("expected threshold 90, got %d", settings.Notifications.BudgetThreshold)
		}
		// Untouched fields keep their defaults.
		if !settings.Notifications.BudgetAlerts {
			t.Error("budget alerts should still be enabled")
		}
		if settings.Preferences.Timezone != "UTC" {
			t.Errorf("expected timezone untouched, got %s", settings.Preferences.Timezone)
		}

		// The update is persisted.
		saved, err := svc.GetSettings(user.ID)
		testutil.AssertNoError(t, err)
		if saved.Preferences.Currency != "USD" {
			t.Errorf("expected persisted currency USD, got %s", saved.Preferences.Currency)
		}
	})

	t.Run("threshold_is_clamped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		threshold := 500
		settings, err := svc.UpdateSettings(user.ID, SettingsUpdate{
			Notifications: &NotificationSettingsUpdate{BudgetThreshold: &threshold},
		})
		testutil.AssertNoError(t, err)
		if settings.Notifications.BudgetThreshold != 100 {
			t.Errorf("expected threshold clamped to 100, got %d", settings.Notifications.BudgetThreshold)
		}

		threshold = -5
		settings, err = svc.UpdateSettings(user.ID, SettingsUpdate{
			Notifications: &NotificationSettingsUpdate{BudgetThreshold: &threshold},
		})
		testutil.AssertNoError(t, err)
		if settings.Notifications.BudgetThreshold != 1 {
			t.Errorf("expected threshold clamped to 1, got %d", settings.Notifications.BudgetThreshold)
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.UpdateSettings("019212aa-0000-7000-8000-000000000000", SettingsUpdate{})
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "abc123"))

	hash, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "abc123" {
		t.Errorf("expected stored hash, got %q", hash)
	}

	// Rotation replaces the stored hash.
	testutil.AssertNoError(t, svc.StoreRefreshTokenHash(user.ID, "def456"))
	hash, err = svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if hash != "def456" {
		t.Errorf("expected rotated hash, got %q", hash)
	}

	err = svc.StoreRefreshTokenHash("019212aa-0000-7000-8000-000000000000", "zzz")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestDeleteAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	victim := testutil.CreateTestUser(t, db)
	testutil.CreateTestExpense(t, db, victim.ID, "Food", 100, now)
	testutil.CreateTestBudget(t, db, victim.ID, "Food", "2026-09", 1000)
	testutil.CreateTestGoal(t, db, victim.ID, 5000, nil)
	testutil.CreateTestHolding(t, db, victim.ID, 100, 10, 1200)
	testutil.CreateTestNotification(t, db, victim.ID, models.NotificationKindSystem)

	bystander := testutil.CreateTestUser(t, db)
	testutil.CreateTestExpense(t, db, bystander.ID, "Food", 100, now)
	testutil.CreateTestBudget(t, db, bystander.ID, "Food", "2026-09", 1000)

	testutil.AssertNoError(t, svc.DeleteAccount(victim.ID))

	_, err := svc.GetUserByID(victim.ID)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")

	// All owned rows are gone, including soft-delete survivors.
	for _, model := range []any{&models.Transaction{}, &models.Budget{}, &models.Goal{}, &models.Holding{}, &models.Notification{}} {
		var count int64
		db.Unscoped().Model(model).Where("user_id = ?", victim.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no %T rows for deleted user, got %d", model, count)
		}
	}

	// The bystander's data is untouched.
	var count int64
	db.Model(&models.Transaction{}).Where("user_id = ?", bystander.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected bystander transaction to survive, got %d", count)
	}
}
