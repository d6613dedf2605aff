package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// NotificationHandler handles notification-related requests.
type NotificationHandler struct {
	notificationService services.NotificationServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationServicer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetUserNotifications lists the user's notifications
// @Summary     Get notifications
// @Description Get a paginated list of the user's notifications, newest first
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       read      query bool   false "Filter by read state"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Paginated notifications"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications [get]
func (h *NotificationHandler) GetUserNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var read *bool
	if v := c.Query("read"); v != "" {
		parsed, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid read, must be true or false"))
			return
		}
		read = &parsed
	}

	result, err := h.notificationService.GetUserNotifications(userID, page, read)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUnreadCount returns the unread notification count
// @Summary     Get unread count
// @Description Get the number of unread notifications
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Unread count"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// MarkRead marks one notification as read
// @Summary     Mark notification read
// @Description Mark a single notification as read
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Notification ID"
// @Success     200 {object} MessageResponse "Notification marked read"
// @Failure     400 {object} ErrorResponse "Invalid notification ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	notificationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.MarkRead(userID, notificationID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead marks every unread notification as read
// @Summary     Mark all notifications read
// @Description Mark all of the user's unread notifications as read
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Number of notifications updated"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	updated, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
