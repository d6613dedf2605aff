package models

import "gorm.io/gorm"

// Preferences holds per-user display and locale preferences.
type Preferences struct {
	Currency        string `json:"currency"`
	Timezone        string `json:"timezone"`
	DateFormat      string `json:"date_format"`
	StartOfMonthDay int    `json:"start_of_month_day"`
}

// NotificationSettings holds per-user alerting preferences. BudgetThreshold
// is the percent-of-budget at which a "near limit" warning fires.
type NotificationSettings struct {
	Enabled          bool   `json:"enabled"`
	BudgetAlerts     bool   `json:"budget_alerts"`
	BudgetThreshold  int    `json:"budget_threshold"`
	GoalReminders    bool   `json:"goal_reminders"`
	GoalReminderDays []int  `json:"goal_reminder_days"`
	MonthlySummary   bool   `json:"monthly_summary"`
	DigestTime       string `json:"digest_time"`
}

// DefaultBudgetThreshold is the percent-of-budget warning level applied when
// a user has no explicit threshold configured.
const DefaultBudgetThreshold = 80

// Settings is the persisted per-user settings document.
type Settings struct {
	Preferences   Preferences          `json:"preferences"`
	Notifications NotificationSettings `json:"notifications"`
}

// DefaultSettings returns the settings applied to newly registered users.
func DefaultSettings() Settings {
	return Settings{
		Preferences: Preferences{
			Currency:        "INR",
			Timezone:        "UTC",
			DateFormat:      "DD/MM/YYYY",
			StartOfMonthDay: 1,
		},
		Notifications: NotificationSettings{
			Enabled:          true,
			BudgetAlerts:     true,
			BudgetThreshold:  DefaultBudgetThreshold,
			GoalReminders:    true,
			GoalReminderDays: []int{7, 3, 1},
			MonthlySummary:   true,
			DigestTime:       "09:00",
		},
	}
}

// User represents the user model in the database
type User struct {
	Base
	Name             string   `gorm:"not null" json:"name"`
	Email            string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string   `gorm:"not null" json:"-"`
	RefreshTokenHash string   `gorm:"size:64" json:"-"`
	Settings         Settings `gorm:"serializer:json" json:"settings"`
}

// BeforeCreate fills in default settings for new users.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if err := u.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if u.Settings.Preferences.Currency == "" {
		u.Settings = DefaultSettings()
	}
	return nil
}

// Currency returns the user's display currency. Settings are the single
// source of truth; there is no separate top-level currency column to keep
// in sync.
func (u *User) Currency() string {
	if u.Settings.Preferences.Currency == "" {
		return "INR"
	}
	return u.Settings.Preferences.Currency
}
