package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/dto"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/internal/api/response"
	"github.com/cuongbtq/opsboard/internal/api/workflow"
)

type JobStatusStore interface {
	ListJobStatuses(ctx context.Context, tenantID string) ([]model.JobStatus, error)
	GetJobStatus(ctx context.Context, tenantID, id string) (*model.JobStatus, error)
	CreateJobStatus(ctx context.Context, status *model.JobStatus) error
	UpdateJobStatus(ctx context.Context, status *model.JobStatus) error
	DeleteJobStatus(ctx context.Context, tenantID, id string) error
	ReorderJobStatuses(ctx context.Context, tenantID string, ids []string) error
}

// JobStatusHandler manages a tenant's status pipeline. Every change is
// checked against the whole pipeline before it is stored.
type JobStatusHandler struct {
	logger *slog.Logger
	store  JobStatusStore
}

func NewJobStatusHandler(store JobStatusStore, logger *slog.Logger) *JobStatusHandler {
	return &JobStatusHandler{logger: logger, store: store}
}

// ListJobStatuses handles GET /v1/job-statuses in pipeline order
func (h *JobStatusHandler) ListJobStatuses(c *gin.Context) {
	statuses, err := h.store.ListJobStatuses(c.Request.Context(), principal(c).TenantID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, workflow.NewPipeline(statuses).Statuses())
}

// GetJobStatus handles GET /v1/job-statuses/:id
func (h *JobStatusHandler) GetJobStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	status, err := h.store.GetJobStatus(c.Request.Context(), principal(c).TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, status)
}

// CreateJobStatus handles POST /v1/job-statuses. Without an order the
// status is appended to the end of the pipeline.
func (h *JobStatusHandler) CreateJobStatus(c *gin.Context) {
	var req dto.CreateJobStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	tenantID := principal(c).TenantID

	existing, err := h.store.ListJobStatuses(ctx, tenantID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	order := 0
	for _, s := range existing {
		if s.Order >= order {
			order = s.Order + 1
		}
	}
	if req.Order != nil {
		order = *req.Order
	}

	now := time.Now().UTC()
	status := model.JobStatus{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Name:         req.Name,
		Color:        req.Color,
		Order:        order,
		NextStatusID: nullable(req.NextStatusID),
		PrevStatusID: nullable(req.PrevStatusID),
		IsFinal:      req.IsFinal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := workflow.NewPipeline(append(existing, status)).Validate(); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if err := h.store.CreateJobStatus(ctx, &status); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("Job status created",
		slog.String("status_id", status.ID),
		slog.String("tenant_id", tenantID),
		slog.Int("order", status.Order),
	)
	response.Created(c, status)
}

// UpdateJobStatus handles PATCH /v1/job-statuses/:id
func (h *JobStatusHandler) UpdateJobStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateJobStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	tenantID := principal(c).TenantID

	existing, err := h.store.ListJobStatuses(ctx, tenantID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	idx := -1
	for i := range existing {
		if existing[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		response.Error(c, h.logger, domain.ErrNotFound)
		return
	}

	status := existing[idx]
	if req.Name != nil {
		status.Name = *req.Name
	}
	if req.Color != nil {
		status.Color = *req.Color
	}
	if req.Order != nil {
		status.Order = *req.Order
	}
	if req.NextStatusID != nil {
		status.NextStatusID = nullable(req.NextStatusID)
	}
	if req.PrevStatusID != nil {
		status.PrevStatusID = nullable(req.PrevStatusID)
	}
	if req.IsFinal != nil {
		status.IsFinal = *req.IsFinal
	}
	status.UpdatedAt = time.Now().UTC()
	existing[idx] = status

	if err := workflow.NewPipeline(existing).Validate(); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if err := h.store.UpdateJobStatus(ctx, &status); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, status)
}

// DeleteJobStatus handles DELETE /v1/job-statuses/:id. Statuses still used
// by jobs are rejected by the database. Next or prev pointers of other
// statuses that named it are cleared, so those statuses fall back to order.
func (h *JobStatusHandler) DeleteJobStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tenantID := principal(c).TenantID
	if err := h.store.DeleteJobStatus(c.Request.Context(), tenantID, id); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("Job status deleted", slog.String("status_id", id), slog.String("tenant_id", tenantID))
	response.Message(c, "job status deleted")
}

// ReorderJobStatuses handles PUT /v1/job-statuses/order. ids must list every
// status of the tenant exactly once.
func (h *JobStatusHandler) ReorderJobStatuses(c *gin.Context) {
	var req dto.ReorderJobStatusesRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	tenantID := principal(c).TenantID

	existing, err := h.store.ListJobStatuses(ctx, tenantID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	known := make(map[string]bool, len(existing))
	for _, s := range existing {
		known[s.ID] = true
	}
	if len(req.IDs) != len(existing) {
		response.Error(c, h.logger, domain.NewValidationError("ids", "expected %d statuses, got %d", len(existing), len(req.IDs)))
		return
	}
	for _, id := range req.IDs {
		if !known[id] {
			response.Error(c, h.logger, domain.NewValidationError("ids", "unknown status %s", id))
			return
		}
	}

	if err := h.store.ReorderJobStatuses(ctx, tenantID, req.IDs); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	statuses, err := h.store.ListJobStatuses(ctx, tenantID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, workflow.NewPipeline(statuses).Statuses())
}
