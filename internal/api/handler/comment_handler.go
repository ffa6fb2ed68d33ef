package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/dto"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/internal/api/response"
	"github.com/cuongbtq/opsboard/internal/events"
)

const excerptLength = 140

type CommentStore interface {
	GetJob(ctx context.Context, tenantID, id string) (*model.Job, error)
	ListComments(ctx context.Context, tenantID, jobID string) ([]model.Comment, error)
	GetComment(ctx context.Context, tenantID, id string) (*model.Comment, error)
	CreateComment(ctx context.Context, comment *model.Comment) error
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, tenantID, id string) error
}

type CommentHandler struct {
	logger  *slog.Logger
	store   CommentStore
	emitter EventEmitter
}

func NewCommentHandler(store CommentStore, emitter EventEmitter, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{logger: logger, store: store, emitter: emitter}
}

// ListComments handles GET /v1/jobs/:id/comments, oldest first
func (h *CommentHandler) ListComments(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	tenantID := principal(c).TenantID

	if _, err := h.store.GetJob(ctx, tenantID, jobID); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	comments, err := h.store.ListComments(ctx, tenantID, jobID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, comments)
}

// CreateComment handles POST /v1/jobs/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	p := principal(c)

	job, err := h.store.GetJob(ctx, p.TenantID, jobID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	now := time.Now().UTC()
	comment := model.Comment{
		ID:        uuid.NewString(),
		TenantID:  p.TenantID,
		JobID:     job.ID,
		AuthorID:  p.UserID,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.CreateComment(ctx, &comment); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	event := jobEvent(events.CommentCreated, p.TenantID, p.UserID, job)
	event.CommentID = comment.ID
	event.Excerpt = excerpt(comment.Body)
	emit(ctx, h.emitter, h.logger, event)

	response.Created(c, comment)
}

// UpdateComment handles PATCH /v1/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var req dto.UpdateCommentRequest
	comment, ok := h.authored(c)
	if !ok || !bindJSON(c, &req) {
		return
	}

	comment.Body = req.Body
	comment.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateComment(c.Request.Context(), comment); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, comment)
}

// DeleteComment handles DELETE /v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	comment, ok := h.authored(c)
	if !ok {
		return
	}

	if err := h.store.DeleteComment(c.Request.Context(), comment.TenantID, comment.ID); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Message(c, "comment deleted")
}

// authored loads the comment and checks that the caller wrote it or is an admin
func (h *CommentHandler) authored(c *gin.Context) (*model.Comment, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}

	p := principal(c)
	comment, err := h.store.GetComment(c.Request.Context(), p.TenantID, id)
	if err != nil {
		response.Error(c, h.logger, err)
		return nil, false
	}

	if comment.AuthorID != p.UserID && p.Role != domain.RoleAdmin {
		response.Error(c, h.logger, fmt.Errorf("%w: only the author can change a comment", domain.ErrForbidden))
		return nil, false
	}
	return comment, true
}

func excerpt(body string) string {
	runes := []rune(body)
	if len(runes) <= excerptLength {
		return body
	}
	return string(runes[:excerptLength-1]) + "…"
}
