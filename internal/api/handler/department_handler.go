package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/opsboard/internal/api/dto"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/internal/api/response"
	"github.com/cuongbtq/opsboard/internal/api/storage"
)

type DepartmentStore interface {
	ListDepartments(ctx context.Context, tenantID string) ([]model.Department, error)
	GetDepartment(ctx context.Context, tenantID, id string) (*model.Department, error)
	CreateDepartment(ctx context.Context, department *model.Department) error
	UpdateDepartment(ctx context.Context, department *model.Department) error
	DeleteDepartment(ctx context.Context, tenantID, id string) error
	ListUsers(ctx context.Context, tenantID string, filter storage.UserFilter) ([]model.User, error)
	GetUser(ctx context.Context, tenantID, id string) (*model.User, error)
}

type DepartmentHandler struct {
	logger *slog.Logger
	store  DepartmentStore
}

func NewDepartmentHandler(store DepartmentStore, logger *slog.Logger) *DepartmentHandler {
	return &DepartmentHandler{logger: logger, store: store}
}

func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	departments, err := h.store.ListDepartments(c.Request.Context(), principal(c).TenantID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, departments)
}

func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	department, err := h.store.GetDepartment(c.Request.Context(), principal(c).TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, department)
}

// ListDepartmentUsers handles GET /v1/departments/:id/users
func (h *DepartmentHandler) ListDepartmentUsers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	tenantID := principal(c).TenantID

	if _, err := h.store.GetDepartment(ctx, tenantID, id); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	users, err := h.store.ListUsers(ctx, tenantID, storage.UserFilter{DepartmentID: id})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, users)
}

func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	tenantID := principal(c).TenantID

	if err := checkRefs(ctx, tenantID, refTo("manager_id", nullable(req.ManagerID), h.store.GetUser)); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	now := time.Now().UTC()
	department := model.Department{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   nullable(req.ManagerID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateDepartment(ctx, &department); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, department)
}

func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	tenantID := principal(c).TenantID

	department, err := h.store.GetDepartment(ctx, tenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if err := checkRefs(ctx, tenantID, refTo("manager_id", nullable(req.ManagerID), h.store.GetUser)); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.Description != nil {
		department.Description = *req.Description
	}
	if req.ManagerID != nil {
		department.ManagerID = nullable(req.ManagerID)
	}
	department.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateDepartment(ctx, department); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, department)
}

func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteDepartment(c.Request.Context(), principal(c).TenantID, id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Message(c, "department deleted")
}
