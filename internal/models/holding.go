package models

import "github.com/shopspring/decimal"

// HoldingType represents the kind of investment holding.
type HoldingType string

const (
	HoldingTypeStock      HoldingType = "STOCK"
	HoldingTypeMutualFund HoldingType = "MUTUAL_FUND"
	HoldingTypeCrypto     HoldingType = "CRYPTO"
	HoldingTypeManual     HoldingType = "MANUAL"
)

// Allocation is the asset bucket a holding counts towards on the dashboard.
type Allocation string

const (
	AllocationEquity Allocation = "EQUITY"
	AllocationDebt   Allocation = "DEBT"
	AllocationCrypto Allocation = "CRYPTO"
	AllocationOther  Allocation = "OTHER"
)

// Holding represents a manually tracked investment position. CurrentValue is
// the total value of the position, entered by the user.
type Holding struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	HoldingType  HoldingType     `gorm:"not null;index" json:"holding_type"`
	Allocation   Allocation      `gorm:"not null;index" json:"allocation"`
	Name         string          `gorm:"not null" json:"name"`
	Symbol       string          `json:"symbol"`
	Notes        string          `json:"notes"`
	BuyPrice     decimal.Decimal `gorm:"type:numeric;not null" json:"buy_price"`
	Quantity     decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	CurrentValue decimal.Decimal `gorm:"type:numeric;not null" json:"current_value"`
}

// InvestedAmount returns buy price times quantity.
func (h Holding) InvestedAmount() decimal.Decimal {
	return h.BuyPrice.Mul(h.Quantity)
}

// ProfitLoss returns current value minus invested amount.
func (h Holding) ProfitLoss() decimal.Decimal {
	return h.CurrentValue.Sub(h.InvestedAmount())
}

// ProfitLossPct returns the profit or loss as a percentage of the invested
// amount, or zero when nothing is invested.
func (h Holding) ProfitLossPct() float64 {
	invested := h.InvestedAmount()
	if invested.IsZero() {
		return 0
	}
	pct, _ := h.ProfitLoss().Div(invested).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
