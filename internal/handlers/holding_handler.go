package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// HoldingHandler handles investment-holding requests.
type HoldingHandler struct {
	holdingService services.HoldingServicer
	auditService   services.AuditServicer
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingService services.HoldingServicer, auditService services.AuditServicer) *HoldingHandler {
	return &HoldingHandler{holdingService: holdingService, auditService: auditService}
}

// HoldingRequest represents the request payload for creating or updating a holding
type HoldingRequest struct {
	HoldingType  models.HoldingType `json:"holding_type" binding:"required,holding_type"`
	Allocation   models.Allocation  `json:"allocation" binding:"required,allocation"`
	Name         string             `json:"name" binding:"required,max=200"`
	Symbol       string             `json:"symbol" binding:"max=50"`
	Notes        string             `json:"notes" binding:"max=500"`
	BuyPrice     decimal.Decimal    `json:"buy_price" binding:"required"`
	Quantity     decimal.Decimal    `json:"quantity" binding:"required"`
	CurrentValue decimal.Decimal    `json:"current_value" binding:"required"`
}

func (r *HoldingRequest) toInput() services.HoldingInput {
	return services.HoldingInput{
		HoldingType:  r.HoldingType,
		Allocation:   r.Allocation,
		Name:         r.Name,
		Symbol:       r.Symbol,
		Notes:        r.Notes,
		BuyPrice:     r.BuyPrice,
		Quantity:     r.Quantity,
		CurrentValue: r.CurrentValue,
	}
}

// CreateHolding handles the creation of a new holding
// @Summary     Create a holding
// @Description Record a new manually tracked investment position
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body HoldingRequest true "Holding details"
// @Success     201 {object} models.Holding "Holding created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/holdings [post]
func (h *HoldingHandler) CreateHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req HoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.holdingService.CreateHolding(userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_HOLDING", "holding", holding.ID, c.ClientIP(),
		map[string]interface{}{"name": holding.Name, "holding_type": holding.HoldingType})

	c.JSON(http.StatusCreated, gin.H{"holding": holding})
}

// GetUserHoldings lists the user's holdings
// @Summary     Get user holdings
// @Description Get the user's holdings, optionally filtered by type and allocation
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       type       query string false "Filter by holding type (STOCK, MUTUAL_FUND, CRYPTO, MANUAL)"
// @Param       allocation query string false "Filter by allocation (EQUITY, DEBT, CRYPTO, OTHER)"
// @Success     200 {array} models.Holding "Holdings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/holdings [get]
func (h *HoldingHandler) GetUserHoldings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var holdingType *models.HoldingType
	if v := c.Query("type"); v != "" {
		t := models.HoldingType(v)
		switch t {
		case models.HoldingTypeStock, models.HoldingTypeMutualFund, models.HoldingTypeCrypto, models.HoldingTypeManual:
			holdingType = &t
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type"))
			return
		}
	}

	var allocation *models.Allocation
	if v := c.Query("allocation"); v != "" {
		a := models.Allocation(v)
		switch a {
		case models.AllocationEquity, models.AllocationDebt, models.AllocationCrypto, models.AllocationOther:
			allocation = &a
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid allocation"))
			return
		}
	}

	holdings, err := h.holdingService.GetUserHoldings(userID, holdingType, allocation)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holdings": holdings})
}

// GetHoldingByID handles the retrieval of a specific holding
// @Summary     Get holding by ID
// @Description Get a specific holding by ID
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     200 {object} models.Holding "Holding details"
// @Failure     400 {object} ErrorResponse "Invalid holding ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/holdings/{id} [get]
func (h *HoldingHandler) GetHoldingByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	holding, err := h.holdingService.GetHoldingByID(userID, holdingID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holding": holding})
}

// UpdateHolding handles updating an existing holding
// @Summary     Update holding
// @Description Replace the writable fields of a holding
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Holding ID"
// @Param       request body HoldingRequest true "Holding details"
// @Success     200 {object} models.Holding "Updated holding"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/holdings/{id} [put]
func (h *HoldingHandler) UpdateHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req HoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.holdingService.UpdateHolding(userID, holdingID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_HOLDING", "holding", holdingID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"holding": holding})
}

// DeleteHolding handles the deletion of a holding
// @Summary     Delete holding
// @Description Delete a holding by ID
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     200 {object} MessageResponse "Holding deleted"
// @Failure     400 {object} ErrorResponse "Invalid holding ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/holdings/{id} [delete]
func (h *HoldingHandler) DeleteHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.holdingService.DeleteHolding(userID, holdingID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_HOLDING", "holding", holdingID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Holding deleted successfully"})
}

// GetPortfolioSummary aggregates the user's portfolio
// @Summary     Get portfolio summary
// @Description Get invested and current totals, profit/loss, and the allocation breakdown across all holdings
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PortfolioSummary "Portfolio summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio/summary [get]
func (h *HoldingHandler) GetPortfolioSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.holdingService.GetPortfolioSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
