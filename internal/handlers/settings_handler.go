package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// SettingsHandler handles user settings and account lifecycle requests.
type SettingsHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(userService services.UserServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{userService: userService, auditService: auditService}
}

// GetSettings returns the user's settings document
// @Summary     Get settings
// @Description Get the user's preferences and notification settings
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Settings "Settings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settings, err := h.userService.GetSettings(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings applies a partial settings update
// @Summary     Update settings
// @Description Update preferences and notification settings. Omitted fields are left unchanged.
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body services.SettingsUpdate true "Settings changes"
// @Success     200 {object} models.Settings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req services.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.userService.UpdateSettings(userID, req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SETTINGS", "user", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// DeleteAccount removes the user and all of their data
// @Summary     Delete account
// @Description Permanently delete the user together with their transactions, budgets, goals, holdings, and notifications
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "User not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/account [delete]
func (h *SettingsHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.DeleteAccount(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
