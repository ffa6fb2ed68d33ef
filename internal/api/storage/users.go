package storage

import (
	"context"
	"strconv"

	"github.com/cuongbtq/opsboard/internal/api/model"
)

const userColumns = `id, tenant_id, email, name, role, department_id, avatar_url, created_at, updated_at`

type UserFilter struct {
	DepartmentID string
	Role         string
	Search       string
}

func (s *Storage) ListUsers(ctx context.Context, tenantID string, filter UserFilter) ([]model.User, error) {
	users := []model.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		query += ` AND department_id = $` + strconv.Itoa(len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		query += ` AND role = $` + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		n := strconv.Itoa(len(args))
		query += ` AND (name ILIKE $` + n + ` ESCAPE '\' OR email ILIKE $` + n + ` ESCAPE '\')`
	}
	query += ` ORDER BY name, email`

	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, mapError(err, "list users")
	}
	return users, nil
}

func (s *Storage) GetUser(ctx context.Context, tenantID, id string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND id = $2`

	if err := s.db.GetContext(ctx, &user, query, tenantID, id); err != nil {
		return nil, mapError(err, "get user")
	}
	return &user, nil
}

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :tenant_id, :email, :name, :role, :department_id, :avatar_url, :created_at, :updated_at)
	`
	_, err := s.db.NamedExecContext(ctx, query, user)
	return mapError(err, "create user")
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			email = :email,
			name = :name,
			role = :role,
			department_id = :department_id,
			avatar_url = :avatar_url,
			updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id
	`
	result, err := s.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return mapError(err, "update user")
	}
	return requireAffected(result, "update user")
}

func (s *Storage) DeleteUser(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return mapError(err, "delete user")
	}
	return requireAffected(result, "delete user")
}

// GetUserSettings returns ErrNotFound when the user never saved settings
func (s *Storage) GetUserSettings(ctx context.Context, tenantID, userID string) (*model.UserSettings, error) {
	var settings model.UserSettings
	query := `
		SELECT user_id, tenant_id, locale, theme, email_notifications, sidebar_collapsed, updated_at
		FROM user_settings
		WHERE tenant_id = $1 AND user_id = $2
	`
	if err := s.db.GetContext(ctx, &settings, query, tenantID, userID); err != nil {
		return nil, mapError(err, "get user settings")
	}
	return &settings, nil
}

func (s *Storage) UpsertUserSettings(ctx context.Context, settings *model.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, tenant_id, locale, theme, email_notifications, sidebar_collapsed, updated_at)
		VALUES (:user_id, :tenant_id, :locale, :theme, :email_notifications, :sidebar_collapsed, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
			locale = EXCLUDED.locale,
			theme = EXCLUDED.theme,
			email_notifications = EXCLUDED.email_notifications,
			sidebar_collapsed = EXCLUDED.sidebar_collapsed,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.NamedExecContext(ctx, query, settings)
	return mapError(err, "save user settings")
}
