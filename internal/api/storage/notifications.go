package storage

import (
	"context"

	"github.com/cuongbtq/opsboard/internal/api/model"
)

const notificationColumns = `id, tenant_id, user_id, kind, title, body, job_id, read_at, created_at`

// ListNotifications returns the newest notifications of a user, capped at limit
func (s *Storage) ListNotifications(ctx context.Context, tenantID, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	notifications := []model.Notification{}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE tenant_id = $1 AND user_id = $2`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $3`

	if err := s.db.SelectContext(ctx, &notifications, query, tenantID, userID, limit); err != nil {
		return nil, mapError(err, "list notifications")
	}
	return notifications, nil
}

func (s *Storage) CountUnreadNotifications(ctx context.Context, tenantID, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE tenant_id = $1 AND user_id = $2 AND read_at IS NULL`

	if err := s.db.GetContext(ctx, &count, query, tenantID, userID); err != nil {
		return 0, mapError(err, "count notifications")
	}
	return count, nil
}

// MarkNotificationRead is idempotent; an already read notification keeps its read_at
func (s *Storage) MarkNotificationRead(ctx context.Context, tenantID, userID, id string) (*model.Notification, error) {
	var notification model.Notification
	query := `
		UPDATE notifications SET read_at = COALESCE(read_at, NOW())
		WHERE tenant_id = $1 AND user_id = $2 AND id = $3
		RETURNING ` + notificationColumns

	if err := s.db.GetContext(ctx, &notification, query, tenantID, userID, id); err != nil {
		return nil, mapError(err, "mark notification read")
	}
	return &notification, nil
}

func (s *Storage) MarkAllNotificationsRead(ctx context.Context, tenantID, userID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = NOW() WHERE tenant_id = $1 AND user_id = $2 AND read_at IS NULL`,
		tenantID, userID,
	)
	if err != nil {
		return 0, mapError(err, "mark notifications read")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, mapError(err, "mark notifications read")
	}
	return n, nil
}
