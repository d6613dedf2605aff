package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/month"
)

// goalReminderService sweeps active goals with deadlines and emits reminder
// and overdue notifications through the deduplicated sink.
type goalReminderService struct {
	db            *gorm.DB
	users         UserServicer
	notifications NotificationServicer
}

// NewGoalReminderService creates a new GoalReminderServicer.
func NewGoalReminderService(db *gorm.DB, users UserServicer, notifications NotificationServicer) GoalReminderServicer {
	return &goalReminderService{db: db, users: users, notifications: notifications}
}

// RunSweep walks every active goal that has a deadline. A reminder fires when
// the number of whole days until the deadline matches one of the user's
// reminder milestones, and always on the due date itself; the dedupe key
// carries both the day count and the
// deadline date, so moving the deadline re-arms the reminders. Once a goal is
// past due a single overdue notification fires, keyed on the deadline it was
// missed at. Per-goal failures are logged and do not stop the sweep.
func (s *goalReminderService) RunSweep(now time.Time) error {
	var goals []models.Goal
	err := s.db.
		Where("status = ? AND deadline IS NOT NULL", models.GoalStatusActive).
		Find(&goals).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	settings := make(map[string]models.Settings)
	for _, goal := range goals {
		userSettings, ok := settings[goal.UserID]
		if !ok {
			user, err := s.users.GetUserByID(goal.UserID)
			if err != nil {
				logger.Get().Errorw("Goal sweep failed to load user",
					"user_id", goal.UserID,
					"error", err,
				)
				continue
			}
			userSettings = user.Settings
			settings[goal.UserID] = userSettings
		}
		if !userSettings.Notifications.Enabled || !userSettings.Notifications.GoalReminders {
			continue
		}

		if err := s.evaluate(goal, userSettings.Notifications.GoalReminderDays, now); err != nil {
			logger.Get().Errorw("Goal sweep failed for goal",
				"goal_id", goal.ID,
				"user_id", goal.UserID,
				"error", err,
			)
		}
	}
	return nil
}

func (s *goalReminderService) evaluate(goal models.Goal, reminderDays []int, now time.Time) error {
	diffDays := month.DiffDays(*goal.Deadline, now)
	deadlineDate := month.DateKey(*goal.Deadline)

	if diffDays < 0 {
		notification := &models.Notification{
			UserID:    goal.UserID,
			Kind:      models.NotificationKindGoalDeadline,
			Title:     fmt.Sprintf("Goal overdue: %s", goal.Title),
			Message:   fmt.Sprintf("Your goal %q passed its deadline on %s with %s of %s saved.", goal.Title, deadlineDate, goal.CurrentAmount.StringFixed(2), goal.TargetAmount.StringFixed(2)),
			Severity:  models.SeverityCritical,
			DedupeKey: fmt.Sprintf("goal:%s:overdue:first:%s", goal.ID, deadlineDate),
			Meta: map[string]any{
				"goal_id":  goal.ID,
				"deadline": deadlineDate,
			},
		}
		_, err := s.notifications.UpsertIfAbsent(notification)
		return err
	}

	// The due date itself always gets a reminder, on top of the user's
	// configured milestones.
	matched := diffDays == 0
	for _, day := range reminderDays {
		if diffDays == day {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}

	severity := models.SeverityInfo
	if diffDays <= 1 {
		severity = models.SeverityWarning
	}
	title := fmt.Sprintf("Goal deadline approaching: %s", goal.Title)
	message := fmt.Sprintf("Your goal %q is due in %d day(s). You have saved %s of %s.", goal.Title, diffDays, goal.CurrentAmount.StringFixed(2), goal.TargetAmount.StringFixed(2))
	if diffDays == 0 {
		title = fmt.Sprintf("Goal due today: %s", goal.Title)
		message = fmt.Sprintf("Your goal %q is due today (%s). You have saved %s of %s.", goal.Title, deadlineDate, goal.CurrentAmount.StringFixed(2), goal.TargetAmount.StringFixed(2))
	}

	notification := &models.Notification{
		UserID:    goal.UserID,
		Kind:      models.NotificationKindGoalDeadline,
		Title:     title,
		Message:   message,
		Severity:  severity,
		DedupeKey: fmt.Sprintf("goal:%s:deadline:%d:date:%s", goal.ID, diffDays, deadlineDate),
		Meta: map[string]any{
			"goal_id":   goal.ID,
			"deadline":  deadlineDate,
			"days_left": diffDays,
		},
	}
	_, err := s.notifications.UpsertIfAbsent(notification)
	return err
}
