package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// DefaultCategory is used when a transaction carries no category.
const DefaultCategory = "Uncategorized"

// Transaction represents a single income or expense event.
type Transaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Type          TransactionType `gorm:"not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Category      string          `gorm:"not null;default:Uncategorized" json:"category"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	PaymentMethod string          `gorm:"not null;default:other" json:"payment_method"`
	Notes         string          `json:"notes"`
}
