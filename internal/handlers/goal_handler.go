package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/month"
	"fintrack/internal/services"
)

// GoalHandler handles savings-goal requests.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// CreateGoalRequest represents the request payload for creating a goal
type CreateGoalRequest struct {
	Title        string          `json:"title" binding:"required,max=200"`
	TargetAmount decimal.Decimal `json:"target_amount" binding:"required"`
	Deadline     *string         `json:"deadline"`
	Notes        string          `json:"notes" binding:"max=500"`
}

// CreateGoal handles the creation of a new savings goal
// @Summary     Create a goal
// @Description Create a new savings goal with an optional deadline
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} models.Goal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var deadline *time.Time
	if req.Deadline != nil && *req.Deadline != "" {
		parsed, parseErr := month.ParseDate(*req.Deadline)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		deadline = &parsed
	}

	goal, err := h.goalService.CreateGoal(userID, req.Title, req.TargetAmount, deadline, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"title": goal.Title, "target_amount": req.TargetAmount.String()})

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetUserGoals lists the user's goals
// @Summary     Get user goals
// @Description Get all of the user's savings goals, active first
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Goal "Goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [get]
func (h *GoalHandler) GetUserGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goals, err := h.goalService.GetUserGoals(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// GetGoalByID handles the retrieval of a specific goal
// @Summary     Get goal by ID
// @Description Get a specific goal by ID
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} models.Goal "Goal details"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoalByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateGoalRequest represents the request payload for updating a goal.
// Send deadline as an empty string to clear it.
type UpdateGoalRequest struct {
	Title        *string            `json:"title" binding:"omitempty,max=200"`
	TargetAmount *decimal.Decimal   `json:"target_amount"`
	Deadline     *string            `json:"deadline"`
	Status       *models.GoalStatus `json:"status" binding:"omitempty,goal_status"`
	Notes        *string            `json:"notes" binding:"omitempty,max=500"`
}

// UpdateGoal handles updating an existing goal
// @Summary     Update goal
// @Description Update an existing goal. Omitted fields are left unchanged; an empty deadline string clears the deadline.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Goal ID"
// @Param       request body UpdateGoalRequest true "Fields to update"
// @Success     200 {object} models.Goal "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.GoalUpdate{
		Title:        req.Title,
		TargetAmount: req.TargetAmount,
		Status:       req.Status,
		Notes:        req.Notes,
	}

	if req.Deadline != nil {
		if *req.Deadline == "" {
			update.ClearDeadline = true
		} else {
			parsed, parseErr := month.ParseDate(*req.Deadline)
			if parseErr != nil {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
				return
			}
			update.Deadline = &parsed
		}
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_GOAL", "goal", goalID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// AddAmountRequest represents the request payload for a goal contribution
type AddAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AddAmount records a contribution towards a goal
// @Summary     Add to goal
// @Description Add an amount to the goal's saved total. Reaching the target marks the goal completed.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Goal ID"
// @Param       request body AddAmountRequest true "Contribution amount"
// @Success     200 {object} models.Goal "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id}/add [post]
func (h *GoalHandler) AddAmount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.AddAmount(userID, goalID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADD_GOAL_AMOUNT", "goal", goalID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount.String()})

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal handles the deletion of a goal
// @Summary     Delete goal
// @Description Delete a goal by ID
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} MessageResponse "Goal deleted"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_GOAL", "goal", goalID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}
