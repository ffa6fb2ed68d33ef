package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/opsboard/internal/api/model"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// CreateNotification inserts n unless the recipient is gone from the tenant
// or a notification with the same id exists. A vanished job leaves job_id NULL.
// It reports whether a row was written.
func (s *Storage) CreateNotification(ctx context.Context, n *model.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (id, tenant_id, user_id, kind, title, body, job_id, created_at)
		SELECT $1::uuid, $2::text, u.id, $4::text, $5::text, $6::text, j.id, $8::timestamptz
		FROM users u
		LEFT JOIN jobs j ON j.tenant_id = $2 AND j.id = $7
		WHERE u.tenant_id = $2 AND u.id = $3
		ON CONFLICT (id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		n.ID, n.TenantID, n.UserID, n.Kind, n.Title, n.Body, n.JobID, n.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		s.logger.Debug("Notification skipped - duplicate or recipient missing",
			slog.String("notification_id", n.ID),
			slog.String("user_id", n.UserID),
		)
		return false, nil
	}

	s.logger.Debug("Notification created",
		slog.String("notification_id", n.ID),
		slog.String("user_id", n.UserID),
		slog.String("kind", n.Kind),
	)
	return true, nil
}

// StatusName resolves a job status id, returning "" when it no longer exists
func (s *Storage) StatusName(ctx context.Context, tenantID, statusID string) (string, error) {
	var name string
	err := s.db.GetContext(ctx, &name,
		`SELECT name FROM job_statuses WHERE tenant_id = $1 AND id = $2`, tenantID, statusID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get status name: %w", err)
	}
	return name, nil
}

// PurgeReadNotifications deletes notifications read before cutoff
func (s *Storage) PurgeReadNotifications(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE read_at IS NOT NULL AND read_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
