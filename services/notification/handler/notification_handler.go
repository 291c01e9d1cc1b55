package handler

import (
	"fmt"
	"net/http"
	"strconv"

	model "auctionhub/internal/models"
	"auctionhub/services/auction/helpers"
	"auctionhub/utils"

	"github.com/gin-gonic/gin"
)

type NotificationServiceInterface interface {
	GetUserNotifications(userID string, limit int) ([]model.Notification, error)
	UnreadCount(userID string) (int, error)
	MarkAsRead(notificationID, userID string) error
	MarkAllAsRead(userID string) (int, error)
}

type NotificationHandler struct {
	service NotificationServiceInterface
}

func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListNotificationsHandler handles GET /users/:user_id/notifications
func (h *NotificationHandler) ListNotificationsHandler(c *gin.Context) {
	userID := c.Param("user_id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			helpers.HandleBindError(c, "ListNotificationsHandler", fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	notifs, err := h.service.GetUserNotifications(userID, limit)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListNotificationsHandler: error retrieving notifications", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	if notifs == nil {
		notifs = []model.Notification{}
	}

	utils.JSONResponse(c, http.StatusOK, notifs, "notifications retrieved successfully")
}

// UnreadCountHandler handles GET /users/:user_id/notifications/unread-count
func (h *NotificationHandler) UnreadCountHandler(c *gin.Context) {
	userID := c.Param("user_id")

	count, err := h.service.UnreadCount(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("UnreadCountHandler: error counting unread", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"unread": count}, "unread count retrieved successfully")
}

// MarkReadHandler handles PATCH /notifications/:notification_id/read
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	notificationID := c.Param("notification_id")
	userID := c.Query("user_id")

	if userID == "" {
		helpers.HandleBindError(c, "MarkReadHandler", fmt.Errorf("missing user_id query parameter"))
		return
	}

	if err := h.service.MarkAsRead(notificationID, userID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("MarkReadHandler: failed to mark notification read", map[string]any{
			"notification_id": notificationID,
			"user_id":         userID,
			"error":           err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"notification_id": notificationID}, "notification marked as read")
}

// MarkAllReadHandler handles POST /users/:user_id/notifications/read-all
func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	userID := c.Param("user_id")

	count, err := h.service.MarkAllAsRead(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("MarkAllReadHandler: failed to mark all read", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"marked": count}, "all notifications marked as read")
}
