package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus represents the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
)

// Goal represents a savings goal with an optional deadline.
type Goal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Title         string          `gorm:"not null" json:"title"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric;not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"current_amount"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	Status        GoalStatus      `gorm:"not null;default:active" json:"status"`
	Notes         string          `json:"notes"`
}
