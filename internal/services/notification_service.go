package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// hiddenTestTitle marks diagnostic notifications that are stored but never
// surfaced in the user-facing list.
const hiddenTestTitle = "Test Notification"

// notificationService handles notification-related business logic.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// UpsertIfAbsent inserts the notification unless a row with the same dedupe
// key already exists. It returns true when a new row was written. A dedupe
// collision is silently ignored, which is what makes the evaluators safe to
// re-run.
func (s *notificationService) UpsertIfAbsent(notification *models.Notification) (bool, error) {
	if notification.DedupeKey == "" {
		return false, apperrors.WithMessage(apperrors.ErrInvalidInput, "notification dedupe key is required")
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedupe_key"}},
		DoNothing: true,
	}).Create(notification)
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetUserNotifications returns a page of the user's notifications, newest
// first. Internal system pings are excluded from the list. Pass read to filter
// on read state.
func (s *notificationService) GetUserNotifications(userID string, page pagination.PageRequest, read *bool) (*pagination.PageResponse[models.Notification], error) {
	page.Defaults()

	base := s.visible(userID)
	if read != nil {
		base = base.Where("read = ?", *read)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notifications, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UnreadCount returns the number of unread visible notifications.
func (s *notificationService) UnreadCount(userID string) (int64, error) {
	var count int64
	if err := s.visible(userID).Where("read = ?", false).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// MarkRead marks a single notification as read.
func (s *notificationService) MarkRead(userID, notificationID string) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotificationNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification as read and returns how many
// rows changed.
func (s *notificationService) MarkAllRead(userID string) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// visible scopes queries to the user's notifications minus hidden system
// diagnostics.
func (s *notificationService) visible(userID string) *gorm.DB {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Where("NOT (kind = ? AND title = ?)", models.NotificationKindSystem, hiddenTestTitle)
}
