package handler

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/opsboard/internal/api/dto"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/internal/api/response"
)

const defaultNotificationLimit = 50

type NotificationStore interface {
	ListNotifications(ctx context.Context, tenantID, userID string, unreadOnly bool, limit int) ([]model.Notification, error)
	CountUnreadNotifications(ctx context.Context, tenantID, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, tenantID, userID, id string) (*model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, tenantID, userID string) (int64, error)
}

// NotificationHandler serves the caller's own notifications only
type NotificationHandler struct {
	logger *slog.Logger
	store  NotificationStore
}

func NewNotificationHandler(store NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{logger: logger, store: store}
}

// ListNotifications handles GET /v1/notifications?unread=true&limit=
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var req dto.ListNotificationsRequest
	if !bindQuery(c, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultNotificationLimit
	}

	ctx := c.Request.Context()
	p := principal(c)

	notifications, err := h.store.ListNotifications(ctx, p.TenantID, p.UserID, req.Unread, req.Limit)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	unread, err := h.store.CountUnreadNotifications(ctx, p.TenantID, p.UserID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, dto.NotificationsResponse{Notifications: notifications, UnreadCount: unread})
}

// MarkRead handles PATCH /v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p := principal(c)
	notification, err := h.store.MarkNotificationRead(c.Request.Context(), p.TenantID, p.UserID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, notification)
}

// MarkAllRead handles POST /v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	p := principal(c)
	n, err := h.store.MarkAllNotificationsRead(c.Request.Context(), p.TenantID, p.UserID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, gin.H{"updated": n})
}
