package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/opsboard/internal/api/auth"
	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/dto"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/internal/api/response"
	"github.com/cuongbtq/opsboard/internal/api/storage"
)

type UserStore interface {
	ListUsers(ctx context.Context, tenantID string, filter storage.UserFilter) ([]model.User, error)
	GetUser(ctx context.Context, tenantID, id string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, tenantID, id string) error
	GetUserSettings(ctx context.Context, tenantID, userID string) (*model.UserSettings, error)
	UpsertUserSettings(ctx context.Context, settings *model.UserSettings) error
	GetDepartment(ctx context.Context, tenantID, id string) (*model.Department, error)
}

type UserHandler struct {
	logger *slog.Logger
	store  UserStore
}

func NewUserHandler(store UserStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{logger: logger, store: store}
}

// ListUsers handles GET /v1/users?department_id=&role=&search=
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.ListUsersRequest
	if !bindQuery(c, &req) {
		return
	}

	users, err := h.store.ListUsers(c.Request.Context(), principal(c).TenantID, storage.UserFilter{
		DepartmentID: req.DepartmentID,
		Role:         req.Role,
		Search:       req.Search,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.store.GetUser(c.Request.Context(), principal(c).TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, user)
}

// CreateUser handles POST /v1/users. Only admins may create other admins.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	p := principal(c)
	role := req.Role
	if role == "" {
		role = domain.RoleMember
	}
	if err := checkGrant(p.Role, role); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if err := checkRefs(c.Request.Context(), p.TenantID,
		refTo("department_id", nullable(req.DepartmentID), h.store.GetDepartment)); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		TenantID:     p.TenantID,
		Email:        strings.ToLower(req.Email),
		Name:         req.Name,
		Role:         role,
		DepartmentID: nullable(req.DepartmentID),
		AvatarURL:    req.AvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("User created",
		slog.String("user_id", user.ID),
		slog.String("tenant_id", user.TenantID),
		slog.String("role", user.Role),
	)
	response.Created(c, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p := principal(c)

	user, err := h.store.GetUser(ctx, p.TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if user.Role == domain.RoleAdmin && p.Role != domain.RoleAdmin {
		response.Error(c, h.logger, fmt.Errorf("%w: only admins can change an admin", domain.ErrForbidden))
		return
	}
	if req.Role != nil {
		if err := checkGrant(p.Role, *req.Role); err != nil {
			response.Error(c, h.logger, err)
			return
		}
		user.Role = *req.Role
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.DepartmentID != nil {
		if err := checkRefs(ctx, p.TenantID,
			refTo("department_id", nullable(req.DepartmentID), h.store.GetDepartment)); err != nil {
			response.Error(c, h.logger, err)
			return
		}
		user.DepartmentID = nullable(req.DepartmentID)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateUser(ctx, user); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p := principal(c)
	if id == p.UserID {
		response.Error(c, h.logger, domain.NewValidationError("id", "you cannot delete yourself"))
		return
	}

	if err := h.store.DeleteUser(c.Request.Context(), p.TenantID, id); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("User deleted", slog.String("user_id", id), slog.String("tenant_id", p.TenantID))
	response.Message(c, "user deleted")
}

// GetSettings handles GET /v1/users/me/settings. Users that never saved
// settings get the defaults.
func (h *UserHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings(c.Request.Context(), principal(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, settings)
}

// UpdateSettings handles PATCH /v1/users/me/settings
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	settings, err := h.settings(ctx, principal(c))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if req.Locale != nil {
		settings.Locale = *req.Locale
	}
	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.EmailNotifications != nil {
		settings.EmailNotifications = *req.EmailNotifications
	}
	if req.SidebarCollapsed != nil {
		settings.SidebarCollapsed = *req.SidebarCollapsed
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := h.store.UpsertUserSettings(ctx, settings); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, settings)
}

func (h *UserHandler) settings(ctx context.Context, p *auth.Principal) (*model.UserSettings, error) {
	settings, err := h.store.GetUserSettings(ctx, p.TenantID, p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return &model.UserSettings{
			UserID:             p.UserID,
			TenantID:           p.TenantID,
			Locale:             domain.DefaultLocale,
			Theme:              domain.DefaultTheme,
			EmailNotifications: true,
		}, nil
	}
	return settings, err
}

// checkGrant keeps managers from handing out the admin role
func checkGrant(callerRole, role string) error {
	if role == domain.RoleAdmin && callerRole != domain.RoleAdmin {
		return fmt.Errorf("%w: only admins can grant the admin role", domain.ErrForbidden)
	}
	return nil
}
