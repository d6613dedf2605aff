package services

import (
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestUpsertIfAbsent(t *testing.T) {
	t.Run("inserts_new_notification", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)

		inserted, err := svc.UpsertIfAbsent(&models.Notification{
			UserID:    user.ID,
			Kind:      models.NotificationKindBudgetWarning,
			Title:     "Budget warning: Food",
			Message:   "You have used 85% of your Food budget.",
			Severity:  models.SeverityWarning,
			DedupeKey: "budget:b1:2026-09:80",
		})
		testutil.AssertNoError(t, err)
		if !inserted {
			t.Fatal("expected first write to insert")
		}
	})

	t.Run("same_dedupe_key_is_dropped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)

		first := &models.Notification{
			UserID:    user.ID,
			Kind:      models.NotificationKindBudgetWarning,
			Title:     "original",
			Message:   "original",
			Severity:  models.SeverityWarning,
			DedupeKey: "budget:b1:2026-09:80",
		}
		inserted, err := svc.UpsertIfAbsent(first)
		testutil.AssertNoError(t, err)
		if !inserted {
			t.Fatal("expected first write to insert")
		}

		second := &models.Notification{
			UserID:    user.ID,
			Kind:      models.NotificationKindBudgetWarning,
			Title:     "replacement attempt",
			Message:   "replacement attempt",
			Severity:  models.SeverityCritical,
			DedupeKey: "budget:b1:2026-09:80",
		}
		inserted, err = svc.UpsertIfAbsent(second)
		testutil.AssertNoError(t, err)
		if inserted {
			t.Fatal("expected second write to be dropped")
		}

		// The original row survives untouched.
		var saved models.Notification
		if err := db.Where("dedupe_key = ?", "budget:b1:2026-09:80").First(&saved).Error; err != nil {
			t.Fatalf("failed to load notification: %v", err)
		}
		if saved.Title != "original" {
			t.Errorf("expected original title to survive, got %q", saved.Title)
		}

		var count int64
		db.Model(&models.Notification{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 notification, got %d", count)
		}
	})

	t.Run("missing_dedupe_key_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpsertIfAbsent(&models.Notification{
			UserID:  user.ID,
			Kind:    models.NotificationKindSystem,
			Title:   "no key",
			Message: "no key",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserNotifications(t *testing.T) {
	t.Run("newest_first_and_scoped_to_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		testutil.CreateTestNotification(t, db, user1.ID, models.NotificationKindBudgetWarning)
		testutil.CreateTestNotification(t, db, user1.ID, models.NotificationKindGoalDeadline)
		testutil.CreateTestNotification(t, db, user2.ID, models.NotificationKindBudgetWarning)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserNotifications(user1.ID, page, nil)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 notifications, got %d", result.TotalItems)
		}
		for _, n := range result.Data {
			if n.UserID != user1.ID {
				t.Errorf("notification leaked across users: %s", n.ID)
			}
		}
	})

	t.Run("hides_system_test_notifications", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)

		hidden := &models.Notification{
			UserID:    user.ID,
			Kind:      models.NotificationKindSystem,
			Title:     "Test Notification",
			Message:   "diagnostic ping",
			Severity:  models.SeverityInfo,
			DedupeKey: "system:diagnostic:1",
		}
		if _, err := svc.UpsertIfAbsent(hidden); err != nil {
			t.Fatalf("failed to create hidden notification: %v", err)
		}
		testutil.CreateTestNotification(t, db, user.ID, models.NotificationKindBudgetWarning)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserNotifications(user.ID, page, nil)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected hidden notification to be excluded, got %d items", result.TotalItems)
		}
		if result.Data[0].Kind == models.NotificationKindSystem {
			t.Error("system test notification should not be listed")
		}

		count, err := svc.UnreadCount(user.ID)
		testutil.AssertNoError(t, err)
		if count != 1 {
			t.Errorf("expected unread count 1, got %d", count)
		}
	})

	t.Run("read_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)

		n1 := testutil.CreateTestNotification(t, db, user.ID, models.NotificationKindBudgetWarning)
		testutil.CreateTestNotification(t, db, user.ID, models.NotificationKindGoalDeadline)

		testutil.AssertNoError(t, svc.MarkRead(user.ID, n1.ID))

		read := true
		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserNotifications(user.ID, page, &read)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 read notification, got %d", result.TotalItems)
		}

		unread := false
		result, err = svc.GetUserNotifications(user.ID, page, &unread)
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 unread notification, got %d", result.TotalItems)
		}
	})
}

func TestMarkRead(t *testing.T) {
	t.Run("marks_single_notification", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)
		n := testutil.CreateTestNotification(t, db, user.ID, models.NotificationKindBudgetWarning)

		testutil.AssertNoError(t, svc.MarkRead(user.ID, n.ID))

		var saved models.Notification
		db.First(&saved, "id = ?", n.ID)
		if !saved.Read {
			t.Error("expected notification to be read")
		}
	})

	t.Run("not_found_for_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		n := testutil.CreateTestNotification(t, db, user1.ID, models.NotificationKindBudgetWarning)

		err := svc.MarkRead(user2.ID, n.ID)
		testutil.AssertAppError(t, err, "NOTIFICATION_NOT_FOUND")
	})
}

func TestMarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewNotificationService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestNotification(t, db, user.ID, models.NotificationKindBudgetWarning)
	testutil.CreateTestNotification(t, db, user.ID, models.NotificationKindGoalDeadline)
	testutil.CreateTestNotification(t, db, user.ID, models.NotificationKindUnusualActivity)

	updated, err := svc.MarkAllRead(user.ID)
	testutil.AssertNoError(t, err)
	if updated != 3 {
		t.Errorf("expected 3 updated, got %d", updated)
	}

	count, err := svc.UnreadCount(user.ID)
	testutil.AssertNoError(t, err)
	if count != 0 {
		t.Errorf("expected unread count 0, got %d", count)
	}

	// Second pass is a no-op.
	updated, err = svc.MarkAllRead(user.ID)
	testutil.AssertNoError(t, err)
	if updated != 0 {
		t.Errorf("expected 0 updated on second pass, got %d", updated)
	}
}
