package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillzlab/enrollment-service/internal/services"
	"github.com/skillzlab/enrollment-service/internal/utils"
)

type NotificationHandler struct {
	BaseHandler
	service services.NotificationService
}

func NewNotificationHandler(service services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== NOTIFICATION ENDPOINTS =====

// ListNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	h.LogRequest(c, "Listing notifications")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	unreadOnly := c.Query("unread") == "true"

	resp, err := h.service.List(c.Request.Context(), userID, page, size, unreadOnly)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetUnreadCount returns the badge counter
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkNotificationRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	h.LogRequest(c, "Marking notification read")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid notification id",
		})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, uint(id)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

// MarkAllNotificationsRead clears the caller's unread backlog
func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	h.LogRequest(c, "Marking all notifications read")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}
