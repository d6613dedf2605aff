package models

// NotificationKind classifies what produced a notification.
type NotificationKind string

const (
	NotificationKindBudgetWarning   NotificationKind = "budget_warning"
	NotificationKindBudgetExceeded  NotificationKind = "budget_exceeded"
	NotificationKindGoalDeadline    NotificationKind = "goal_deadline"
	NotificationKindUnusualActivity NotificationKind = "unusual_activity"
	NotificationKindSystem          NotificationKind = "system"
)

// Severity levels for notifications.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Notification is a deduplicated user-visible alert. DedupeKey is globally
// unique: a write that collides on it means the alert was already emitted and
// is silently dropped, never overwriting the existing row.
type Notification struct {
	Base
	UserID    string           `gorm:"type:uuid;not null;index:idx_notifications_user_created" json:"user_id"`
	Kind      NotificationKind `gorm:"not null;index" json:"kind"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"not null" json:"message"`
	Severity  Severity         `gorm:"not null;default:info" json:"severity"`
	Read      bool             `gorm:"not null;default:false;index" json:"read"`
	DedupeKey string           `gorm:"uniqueIndex;not null" json:"dedupe_key"`
	Meta      map[string]any   `gorm:"serializer:json" json:"meta,omitempty"`
}
