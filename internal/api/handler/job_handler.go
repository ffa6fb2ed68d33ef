package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/dto"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/internal/api/response"
	"github.com/cuongbtq/opsboard/internal/api/storage"
	"github.com/cuongbtq/opsboard/internal/api/workflow"
	"github.com/cuongbtq/opsboard/internal/events"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type JobStore interface {
	ListJobStatuses(ctx context.Context, tenantID string) ([]model.JobStatus, error)
	CreateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, tenantID, id string) (*model.Job, error)
	UpdateJob(ctx context.Context, job *model.Job) error
	MoveJob(ctx context.Context, tenantID, id, fromStatusID, toStatusID string) (*model.Job, error)
	DeleteJob(ctx context.Context, tenantID, id string) error
	ListJobs(ctx context.Context, tenantID string, filter storage.JobFilter) ([]model.Job, error)
	GetJobType(ctx context.Context, tenantID, id string) (*model.JobType, error)
	GetUser(ctx context.Context, tenantID, id string) (*model.User, error)
	GetPaymentChannel(ctx context.Context, tenantID, id string) (*model.PaymentChannel, error)
	GetDepartment(ctx context.Context, tenantID, id string) (*model.Department, error)
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger  *slog.Logger
	store   JobStore
	emitter EventEmitter
}

func NewJobHandler(store JobStore, emitter EventEmitter, logger *slog.Logger) *JobHandler {
	return &JobHandler{logger: logger, store: store, emitter: emitter}
}

// ListJobs handles GET /v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if !bindQuery(c, &req) {
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid cursor",
			[]response.FieldError{{Field: "cursor", Message: err.Error()}})
		return
	}

	p := principal(c)
	jobs, err := h.store.ListJobs(c.Request.Context(), p.TenantID, storage.JobFilter{
		StatusID:     req.StatusID,
		TypeID:       req.TypeID,
		AssigneeID:   req.AssigneeID,
		DepartmentID: req.DepartmentID,
		Search:       req.Search,
		PageSize:     req.PageSize,
		Cursor:       cursor,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	resp := dto.ListJobsResponse{Jobs: jobs}
	if len(jobs) > req.PageSize {
		resp.Jobs = jobs[:req.PageSize]
		last := resp.Jobs[len(resp.Jobs)-1]
		resp.NextCursor = EncodeJobCursor(&storage.JobCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	response.OK(c, resp)
}

// CreateJob handles POST /v1/jobs. Without a status the job starts in the
// first status of the pipeline.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p := principal(c)

	pipeline, err := h.pipeline(ctx, p.TenantID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	statusID := req.StatusID
	if statusID == "" {
		initial, err := pipeline.Initial()
		if err != nil {
			response.Error(c, h.logger, err)
			return
		}
		statusID = initial.ID
	} else if _, ok := pipeline.Get(statusID); !ok {
		response.Error(c, h.logger, domain.NewValidationError("status_id", "unknown status %s", statusID))
		return
	}

	if err := h.checkRefs(ctx, p.TenantID, &req.TypeID, nullable(req.AssigneeID),
		nullable(req.PaymentChannelID), nullable(req.DepartmentID)); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	now := time.Now().UTC()
	job := model.Job{
		ID:               uuid.NewString(),
		TenantID:         p.TenantID,
		Title:            req.Title,
		Description:      req.Description,
		StatusID:         statusID,
		TypeID:           req.TypeID,
		AssigneeID:       nullable(req.AssigneeID),
		PaymentChannelID: nullable(req.PaymentChannelID),
		DepartmentID:     nullable(req.DepartmentID),
		Amount:           req.Amount,
		DueDate:          req.DueDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.store.CreateJob(ctx, &job); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("Job created",
		slog.String("job_id", job.ID),
		slog.String("tenant_id", job.TenantID),
		slog.String("status_id", job.StatusID),
	)

	event := jobEvent(events.JobCreated, p.TenantID, p.UserID, &job)
	emit(ctx, h.emitter, h.logger, event)

	response.Created(c, job)
}

// checkRefs makes sure the referenced type, assignee, payment channel and
// department belong to tenantID
func (h *JobHandler) checkRefs(ctx context.Context, tenantID string, typeID, assigneeID, channelID, departmentID *string) error {
	return checkRefs(ctx, tenantID,
		refTo("type_id", typeID, h.store.GetJobType),
		refTo("assignee_id", assigneeID, h.store.GetUser),
		refTo("payment_channel_id", channelID, h.store.GetPaymentChannel),
		refTo("department_id", departmentID, h.store.GetDepartment),
	)
}

// GetJob handles GET /v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	job, err := h.store.GetJob(c.Request.Context(), principal(c).TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, job)
}

// UpdateJob handles PATCH /v1/jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p := principal(c)

	job, err := h.store.GetJob(ctx, p.TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	previousAssignee := job.AssigneeID

	if err := h.checkRefs(ctx, p.TenantID, req.TypeID, nullable(req.AssigneeID),
		nullable(req.PaymentChannelID), nullable(req.DepartmentID)); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.TypeID != nil {
		job.TypeID = *req.TypeID
	}
	if req.AssigneeID != nil {
		job.AssigneeID = nullable(req.AssigneeID)
	}
	if req.PaymentChannelID != nil {
		job.PaymentChannelID = nullable(req.PaymentChannelID)
	}
	if req.DepartmentID != nil {
		job.DepartmentID = nullable(req.DepartmentID)
	}
	if req.Amount != nil {
		job.Amount = *req.Amount
	}
	if req.DueDate != nil {
		job.DueDate = req.DueDate
	}
	job.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateJob(ctx, job); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if job.AssigneeID != nil && !sameRef(previousAssignee, job.AssigneeID) {
		emit(ctx, h.emitter, h.logger, jobEvent(events.JobAssigned, p.TenantID, p.UserID, job))
	}

	response.OK(c, job)
}

// DeleteJob handles DELETE /v1/jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p := principal(c)
	if err := h.store.DeleteJob(c.Request.Context(), p.TenantID, id); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("Job deleted", slog.String("job_id", id), slog.String("tenant_id", p.TenantID))
	response.Message(c, "job deleted")
}

// AdvanceJob handles POST /v1/jobs/:id/advance
func (h *JobHandler) AdvanceJob(c *gin.Context) {
	h.step(c, (*workflow.Pipeline).Next)
}

// RevertJob handles POST /v1/jobs/:id/revert
func (h *JobHandler) RevertJob(c *gin.Context) {
	h.step(c, (*workflow.Pipeline).Prev)
}

func (h *JobHandler) step(c *gin.Context, neighbour func(*workflow.Pipeline, string) (model.JobStatus, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	p := principal(c)

	job, pipeline, err := h.load(ctx, p.TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	target, err := neighbour(pipeline, job.StatusID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.move(c, job, target.ID)
}

// TransitionJob handles PATCH /v1/jobs/:id/status. Only admins and managers
// may force a move to a non-adjacent status.
func (h *JobHandler) TransitionJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionJobRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p := principal(c)

	if req.Force && !domain.IsPrivileged(p.Role) {
		response.Error(c, h.logger, fmt.Errorf("%w: only admins and managers may force a transition", domain.ErrForbidden))
		return
	}

	job, pipeline, err := h.load(ctx, p.TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if err := pipeline.CanTransition(job.StatusID, req.StatusID, req.Force); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.move(c, job, req.StatusID)
}

func (h *JobHandler) move(c *gin.Context, job *model.Job, toStatusID string) {
	ctx := c.Request.Context()
	p := principal(c)

	moved, err := h.store.MoveJob(ctx, p.TenantID, job.ID, job.StatusID, toStatusID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	h.logger.Info("Job status changed",
		slog.String("job_id", job.ID),
		slog.String("from_status", job.StatusID),
		slog.String("to_status", toStatusID),
		slog.String("actor_id", p.UserID),
	)

	event := jobEvent(events.JobStatusChanged, p.TenantID, p.UserID, moved)
	event.FromStatus = job.StatusID
	event.ToStatus = toStatusID
	emit(ctx, h.emitter, h.logger, event)

	response.OK(c, moved)
}

func (h *JobHandler) load(ctx context.Context, tenantID, id string) (*model.Job, *workflow.Pipeline, error) {
	job, err := h.store.GetJob(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	pipeline, err := h.pipeline(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	return job, pipeline, nil
}

func (h *JobHandler) pipeline(ctx context.Context, tenantID string) (*workflow.Pipeline, error) {
	statuses, err := h.store.ListJobStatuses(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return workflow.NewPipeline(statuses), nil
}

func jobEvent(t events.Type, tenantID, actorID string, job *model.Job) events.Event {
	event := events.New(t, tenantID, actorID)
	event.JobID = job.ID
	event.JobTitle = job.Title
	if job.AssigneeID != nil {
		event.AssigneeID = *job.AssigneeID
	}
	return event
}
