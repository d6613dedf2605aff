package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// holdingService handles investment-holding business logic.
type holdingService struct {
	db *gorm.DB
}

// NewHoldingService creates a new HoldingServicer.
func NewHoldingService(db *gorm.DB) HoldingServicer {
	return &holdingService{db: db}
}

// CreateHolding records a new investment position.
func (s *holdingService) CreateHolding(userID string, input HoldingInput) (*models.Holding, error) {
	if err := validateHoldingInput(&input); err != nil {
		return nil, err
	}

	holding := &models.Holding{
		UserID:       userID,
		HoldingType:  input.HoldingType,
		Allocation:   input.Allocation,
		Name:         input.Name,
		Symbol:       input.Symbol,
		Notes:        input.Notes,
		BuyPrice:     input.BuyPrice,
		Quantity:     input.Quantity,
		CurrentValue: input.CurrentValue,
	}

	if err := s.db.Create(holding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holding, nil
}

// GetUserHoldings returns the user's holdings, optionally filtered by type
// and allocation bucket.
func (s *holdingService) GetUserHoldings(userID string, holdingType *models.HoldingType, allocation *models.Allocation) ([]models.Holding, error) {
	q := s.db.Where("user_id = ?", userID)
	if holdingType != nil {
		q = q.Where("holding_type = ?", *holdingType)
	}
	if allocation != nil {
		q = q.Where("allocation = ?", *allocation)
	}

	var holdings []models.Holding
	if err := q.Order("name").Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holdings, nil
}

// GetHoldingByID returns a holding by ID if it belongs to the user.
func (s *holdingService) GetHoldingByID(userID, holdingID string) (*models.Holding, error) {
	var holding models.Holding
	if err := s.db.Where("id = ? AND user_id = ?", holdingID, userID).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHoldingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &holding, nil
}

// UpdateHolding replaces the writable fields of a holding.
func (s *holdingService) UpdateHolding(userID, holdingID string, input HoldingInput) (*models.Holding, error) {
	holding, err := s.GetHoldingByID(userID, holdingID)
	if err != nil {
		return nil, err
	}
	if err := validateHoldingInput(&input); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"holding_type":  input.HoldingType,
		"allocation":    input.Allocation,
		"name":          input.Name,
		"symbol":        input.Symbol,
		"notes":         input.Notes,
		"buy_price":     input.BuyPrice,
		"quantity":      input.Quantity,
		"current_value": input.CurrentValue,
	}
	if err := s.db.Model(holding).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holding, nil
}

// DeleteHolding soft-deletes a holding.
func (s *holdingService) DeleteHolding(userID, holdingID string) error {
	holding, err := s.GetHoldingByID(userID, holdingID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(holding).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetPortfolioSummary aggregates invested amounts, current values, and the
// allocation breakdown across the user's holdings.
func (s *holdingService) GetPortfolioSummary(userID string) (*PortfolioSummary, error) {
	holdings, err := s.GetUserHoldings(userID, nil, nil)
	if err != nil {
		return nil, err
	}
	summary := summarizeHoldings(holdings)
	return &summary, nil
}

// summarizeHoldings folds a holding list into portfolio totals.
func summarizeHoldings(holdings []models.Holding) PortfolioSummary {
	summary := PortfolioSummary{
		Allocation: make(map[models.Allocation]decimal.Decimal),
	}
	for _, h := range holdings {
		summary.InvestedTotal = summary.InvestedTotal.Add(h.InvestedAmount())
		summary.CurrentValueTotal = summary.CurrentValueTotal.Add(h.CurrentValue)
		summary.Allocation[h.Allocation] = summary.Allocation[h.Allocation].Add(h.CurrentValue)
	}
	summary.ProfitLoss = summary.CurrentValueTotal.Sub(summary.InvestedTotal)
	if summary.InvestedTotal.IsPositive() {
		pct, _ := summary.ProfitLoss.Div(summary.InvestedTotal).Mul(decimal.NewFromInt(100)).Float64()
		summary.ProfitLossPct = pct
	}
	return summary
}

func validateHoldingInput(input *HoldingInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	switch input.HoldingType {
	case models.HoldingTypeStock, models.HoldingTypeMutualFund, models.HoldingTypeCrypto, models.HoldingTypeManual:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid holding type")
	}
	switch input.Allocation {
	case models.AllocationEquity, models.AllocationDebt, models.AllocationCrypto, models.AllocationOther:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid allocation")
	}
	if input.BuyPrice.IsNegative() || input.Quantity.IsNegative() || input.CurrentValue.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amounts must not be negative")
	}
	return nil
}
