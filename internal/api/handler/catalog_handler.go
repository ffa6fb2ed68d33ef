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
)

type JobTypeStore interface {
	ListJobTypes(ctx context.Context, tenantID string) ([]model.JobType, error)
	GetJobType(ctx context.Context, tenantID, id string) (*model.JobType, error)
	CreateJobType(ctx context.Context, jobType *model.JobType) error
	UpdateJobType(ctx context.Context, jobType *model.JobType) error
	DeleteJobType(ctx context.Context, tenantID, id string) error
}

type JobTypeHandler struct {
	logger *slog.Logger
	store  JobTypeStore
}

func NewJobTypeHandler(store JobTypeStore, logger *slog.Logger) *JobTypeHandler {
	return &JobTypeHandler{logger: logger, store: store}
}

func (h *JobTypeHandler) ListJobTypes(c *gin.Context) {
	types, err := h.store.ListJobTypes(c.Request.Context(), principal(c).TenantID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, types)
}

func (h *JobTypeHandler) GetJobType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	jobType, err := h.store.GetJobType(c.Request.Context(), principal(c).TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, jobType)
}

func (h *JobTypeHandler) CreateJobType(c *gin.Context) {
	var req dto.CreateJobTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	now := time.Now().UTC()
	jobType := model.JobType{
		ID:          uuid.NewString(),
		TenantID:    principal(c).TenantID,
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateJobType(c.Request.Context(), &jobType); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, jobType)
}

func (h *JobTypeHandler) UpdateJobType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateJobTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	jobType, err := h.store.GetJobType(ctx, principal(c).TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if req.Name != nil {
		jobType.Name = *req.Name
	}
	if req.Color != nil {
		jobType.Color = *req.Color
	}
	if req.Description != nil {
		jobType.Description = *req.Description
	}
	jobType.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateJobType(ctx, jobType); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, jobType)
}

func (h *JobTypeHandler) DeleteJobType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeleteJobType(c.Request.Context(), principal(c).TenantID, id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Message(c, "job type deleted")
}

type PaymentChannelStore interface {
	ListPaymentChannels(ctx context.Context, tenantID string, activeOnly bool) ([]model.PaymentChannel, error)
	GetPaymentChannel(ctx context.Context, tenantID, id string) (*model.PaymentChannel, error)
	CreatePaymentChannel(ctx context.Context, channel *model.PaymentChannel) error
	UpdatePaymentChannel(ctx context.Context, channel *model.PaymentChannel) error
	DeletePaymentChannel(ctx context.Context, tenantID, id string) error
}

type PaymentChannelHandler struct {
	logger *slog.Logger
	store  PaymentChannelStore
}

func NewPaymentChannelHandler(store PaymentChannelStore, logger *slog.Logger) *PaymentChannelHandler {
	return &PaymentChannelHandler{logger: logger, store: store}
}

// ListPaymentChannels handles GET /v1/payment-channels?active=true
func (h *PaymentChannelHandler) ListPaymentChannels(c *gin.Context) {
	var req dto.ListPaymentChannelsRequest
	if !bindQuery(c, &req) {
		return
	}

	channels, err := h.store.ListPaymentChannels(c.Request.Context(), principal(c).TenantID, req.Active)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, channels)
}

func (h *PaymentChannelHandler) GetPaymentChannel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	channel, err := h.store.GetPaymentChannel(c.Request.Context(), principal(c).TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, channel)
}

// CreatePaymentChannel handles POST /v1/payment-channels. Channels are active unless stated otherwise.
func (h *PaymentChannelHandler) CreatePaymentChannel(c *gin.Context) {
	var req dto.CreatePaymentChannelRequest
	if !bindJSON(c, &req) {
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := time.Now().UTC()
	channel := model.PaymentChannel{
		ID:          uuid.NewString(),
		TenantID:    principal(c).TenantID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreatePaymentChannel(c.Request.Context(), &channel); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Created(c, channel)
}

func (h *PaymentChannelHandler) UpdatePaymentChannel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePaymentChannelRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	channel, err := h.store.GetPaymentChannel(ctx, principal(c).TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.Description != nil {
		channel.Description = *req.Description
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}
	channel.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdatePaymentChannel(ctx, channel); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, channel)
}

func (h *PaymentChannelHandler) DeletePaymentChannel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.store.DeletePaymentChannel(c.Request.Context(), principal(c).TenantID, id); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Message(c, "payment channel deleted")
}
