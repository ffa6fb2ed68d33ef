package dto

import (
	"time"

	"github.com/cuongbtq/opsboard/internal/api/model"
)

type CreateJobRequest struct {
	Title            string     `json:"title" binding:"required,max=200"`
	Description      string     `json:"description" binding:"max=10000"`
	StatusID         string     `json:"status_id" binding:"omitempty,uuid"`
	TypeID           string     `json:"type_id" binding:"required,uuid"`
	AssigneeID       *string    `json:"assignee_id" binding:"omitempty,uuid"`
	PaymentChannelID *string    `json:"payment_channel_id" binding:"omitempty,uuid"`
	DepartmentID     *string    `json:"department_id" binding:"omitempty,uuid"`
	Amount           int64      `json:"amount" binding:"min=0"`
	DueDate          *time.Time `json:"due_date"`
}

// UpdateJobRequest is a partial update. For the nullable references an
// empty string clears the value. Status changes go through the transition endpoints.
type UpdateJobRequest struct {
	Title            *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description      *string    `json:"description" binding:"omitempty,max=10000"`
	TypeID           *string    `json:"type_id" binding:"omitempty,uuid"`
	AssigneeID       *string    `json:"assignee_id" binding:"omitempty,uuid|len=0"`
	PaymentChannelID *string    `json:"payment_channel_id" binding:"omitempty,uuid|len=0"`
	DepartmentID     *string    `json:"department_id" binding:"omitempty,uuid|len=0"`
	Amount           *int64     `json:"amount" binding:"omitempty,min=0"`
	DueDate          *time.Time `json:"due_date"`
}

type ListJobsRequest struct {
	StatusID     string `form:"status_id" binding:"omitempty,uuid"`
	TypeID       string `form:"type_id" binding:"omitempty,uuid"`
	AssigneeID   string `form:"assignee_id" binding:"omitempty,uuid"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Search       string `form:"search" binding:"max=200"`
	PageSize     int    `form:"page_size" binding:"min=0"`
	Cursor       string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []model.Job `json:"jobs"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type TransitionJobRequest struct {
	StatusID string `json:"status_id" binding:"required,uuid"`
	Force    bool   `json:"force"`
}

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}
