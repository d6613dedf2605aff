package models

import "github.com/shopspring/decimal"

// Budget is a monthly spending limit for one expense category. At most one
// budget exists per (user, category, month); writes go through an upsert
// keyed on that triple.
type Budget struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;uniqueIndex:idx_budgets_user_category_month" json:"user_id"`
	Category string          `gorm:"not null;uniqueIndex:idx_budgets_user_category_month" json:"category"`
	Month    string          `gorm:"size:7;not null;uniqueIndex:idx_budgets_user_category_month;index" json:"month"`
	Amount   decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
}
