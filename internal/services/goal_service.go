package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// goalService handles savings-goal business logic.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

// CreateGoal creates a new active savings goal.
func (s *goalService) CreateGoal(userID, title string, targetAmount decimal.Decimal, deadline *time.Time, notes string) (*models.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if !targetAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}
	if deadline != nil {
		d := deadline.UTC()
		deadline = &d
	}

	goal := &models.Goal{
		UserID:        userID,
		Title:         title,
		TargetAmount:  targetAmount,
		CurrentAmount: decimal.Zero,
		Deadline:      deadline,
		Status:        models.GoalStatusActive,
		Notes:         notes,
	}

	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// GetUserGoals returns all of the user's goals, active first, then by nearest
// deadline.
func (s *goalService) GetUserGoals(userID string) ([]models.Goal, error) {
	var goals []models.Goal
	err := s.db.Where("user_id = ?", userID).
		Order("status ASC").
		Order("deadline ASC NULLS LAST").
		Find(&goals).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goals, nil
}

// GetGoalByID returns a goal by ID if it belongs to the user.
func (s *goalService) GetGoalByID(userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal applies a partial update. Set ClearDeadline to drop the deadline
// entirely. A goal whose saved amount reaches the target flips to completed.
func (s *goalService) UpdateGoal(userID, goalID string, update GoalUpdate) (*models.Goal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
		}
		updates["title"] = title
	}
	if update.TargetAmount != nil {
		if !update.TargetAmount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
		}
		updates["target_amount"] = *update.TargetAmount
	}
	if update.ClearDeadline {
		updates["deadline"] = nil
	} else if update.Deadline != nil {
		updates["deadline"] = update.Deadline.UTC()
	}
	if update.Status != nil {
		if *update.Status != models.GoalStatusActive && *update.Status != models.GoalStatusCompleted {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid goal status")
		}
		updates["status"] = *update.Status
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.completeIfReached(goal)
}

// AddAmount adds a contribution to the goal's saved amount. Reaching the
// target marks the goal completed.
func (s *goalService) AddAmount(userID, goalID string, amount decimal.Decimal) (*models.Goal, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	goal.CurrentAmount = goal.CurrentAmount.Add(amount)
	if err := s.db.Model(goal).Update("current_amount", goal.CurrentAmount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.completeIfReached(goal)
}

// DeleteGoal soft-deletes a goal.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// completeIfReached flips an active goal to completed once the saved amount
// covers the target.
func (s *goalService) completeIfReached(goal *models.Goal) (*models.Goal, error) {
	if goal.Status == models.GoalStatusActive && goal.CurrentAmount.GreaterThanOrEqual(goal.TargetAmount) {
		goal.Status = models.GoalStatusCompleted
		if err := s.db.Model(goal).Update("status", models.GoalStatusCompleted).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return goal, nil
}
