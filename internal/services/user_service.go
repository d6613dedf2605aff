package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user with default settings.
func (s *userService) CreateUser(name, email, password string) (*models.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}

	// Check if user with email exists
	var count int64
	s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: string(hashedPassword),
		Settings:     models.DefaultSettings(),
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// StoreRefreshTokenHash persists the hash of the user's current refresh token.
func (s *userService) StoreRefreshTokenHash(userID, tokenHash string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for the user.
func (s *userService) GetRefreshTokenHash(userID string) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// GetSettings returns the user's settings document.
func (s *userService) GetSettings(userID string) (models.Settings, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return models.Settings{}, err
	}
	return user.Settings, nil
}

// UpdateSettings applies a partial settings update. The budget threshold is
// clamped to [1,100] and currency codes are normalized to upper case.
func (s *userService) UpdateSettings(userID string, update SettingsUpdate) (models.Settings, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return models.Settings{}, err
	}

	settings := user.Settings

	if p := update.Preferences; p != nil {
		if p.Currency != nil {
			settings.Preferences.Currency = strings.ToUpper(*p.Currency)
		}
		if p.Timezone != nil {
			settings.Preferences.Timezone = *p.Timezone
		}
		if p.DateFormat != nil {
			settings.Preferences.DateFormat = *p.DateFormat
		}
		if p.StartOfMonthDay != nil {
			settings.Preferences.StartOfMonthDay = *p.StartOfMonthDay
		}
	}

	if n := update.Notifications; n != nil {
		if n.Enabled != nil {
			settings.Notifications.Enabled = *n.Enabled
		}
		if n.BudgetAlerts != nil {
			settings.Notifications.BudgetAlerts = *n.BudgetAlerts
		}
		if n.BudgetThreshold != nil {
			settings.Notifications.BudgetThreshold = clampInt(*n.BudgetThreshold, 1, 100)
		}
		if n.GoalReminders != nil {
			settings.Notifications.GoalReminders = *n.GoalReminders
		}
		if n.GoalReminderDays != nil {
			settings.Notifications.GoalReminderDays = *n.GoalReminderDays
		}
		if n.MonthlySummary != nil {
			settings.Notifications.MonthlySummary = *n.MonthlySummary
		}
		if n.DigestTime != nil {
			settings.Notifications.DigestTime = *n.DigestTime
		}
	}

	if err := s.db.Model(user).Update("settings", settings).Error; err != nil {
		return models.Settings{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return settings, nil
}

// DeleteAccount removes the user together with their transactions, budgets,
// goals, holdings, and notifications. The deletions run inside a single
// database transaction; on dialects without transaction support the
// operations proceed best-effort.
func (s *userService) DeleteAccount(userID string) error {
	if _, err := s.GetUserByID(userID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		owned := []any{
			&models.Transaction{},
			&models.Budget{},
			&models.Goal{},
			&models.Holding{},
			&models.Notification{},
		}
		for _, model := range owned {
			if err := tx.Unscoped().Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Where("id = ?", userID).Delete(&models.User{}).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// clampInt bounds v to the inclusive range [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
