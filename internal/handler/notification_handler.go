package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Helmus101/confluence/internal/dto"
	"github.com/Helmus101/confluence/internal/service"
)

// NotificationHandler exposes the caller's in-app notifications.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications?limit=.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "limit must be a number")
		}
		limit = n
	}
	list, err := h.notifications.List(c.Request().Context(), userID, limit)
	if err != nil {
		return ServiceError(c, err, "failed to list notifications")
	}
	return Success(c, http.StatusOK, "notifications retrieved", list)
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	n, err := h.notifications.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return ServiceError(c, err, "failed to count notifications")
	}
	return Success(c, http.StatusOK, "unread count retrieved", dto.UnreadCountResponse{Count: n})
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid notification id")
	}
	if err := h.notifications.MarkRead(c.Request().Context(), id, userID); err != nil {
		return ServiceError(c, err, "failed to update notification")
	}
	return Success(c, http.StatusOK, "notification marked read", nil)
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return unauthenticated(c)
	}
	n, err := h.notifications.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return ServiceError(c, err, "failed to update notifications")
	}
	return Success(c, http.StatusOK, "notifications marked read", dto.MarkAllReadResponse{Updated: n})
}
