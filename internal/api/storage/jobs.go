package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/model"
)

const jobColumns = `
	id, tenant_id, title, description, status_id, type_id, assignee_id,
	payment_channel_id, department_id, amount, due_date, created_at, updated_at`

type JobFilter struct {
	StatusID     string
	TypeID       string
	AssigneeID   string
	DepartmentID string
	Search       string
	PageSize     int
	Cursor       *JobCursor
}

type JobCursor struct {
	CreatedAt time.Time
	ID        string
}

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES (
			:id, :tenant_id, :title, :description, :status_id, :type_id, :assignee_id,
			:payment_channel_id, :department_id, :amount, :due_date, :created_at, :updated_at
		)
	`
	if _, err := s.db.NamedExecContext(ctx, query, job); err != nil {
		return mapError(err, "create job")
	}

	s.logger.Debug("Job created",
		slog.String("job_id", job.ID),
		slog.String("tenant_id", job.TenantID),
	)
	return nil
}

func (s *Storage) GetJob(ctx context.Context, tenantID, id string) (*model.Job, error) {
	var job model.Job
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE tenant_id = $1 AND id = $2`

	if err := s.db.GetContext(ctx, &job, query, tenantID, id); err != nil {
		return nil, mapError(err, "get job")
	}
	return &job, nil
}

func (s *Storage) UpdateJob(ctx context.Context, job *model.Job) error {
	query := `
		UPDATE jobs SET
			title = :title,
			description = :description,
			status_id = :status_id,
			type_id = :type_id,
			assignee_id = :assignee_id,
			payment_channel_id = :payment_channel_id,
			department_id = :department_id,
			amount = :amount,
			due_date = :due_date,
			updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id
	`
	result, err := s.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return mapError(err, "update job")
	}
	return requireAffected(result, "update job")
}

// MoveJob moves a job only if it is still in fromStatusID, so two
// concurrent transitions cannot both succeed
func (s *Storage) MoveJob(ctx context.Context, tenantID, id, fromStatusID, toStatusID string) (*model.Job, error) {
	var job model.Job
	query := `
		UPDATE jobs
		SET status_id = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND status_id = $4
		RETURNING ` + jobColumns

	err := s.db.GetContext(ctx, &job, query, toStatusID, tenantID, id, fromStatusID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job was moved by someone else", domain.ErrConflict)
	}
	if err != nil {
		return nil, mapError(err, "move job")
	}
	return &job, nil
}

func (s *Storage) DeleteJob(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return mapError(err, "delete job")
	}
	return requireAffected(result, "delete job")
}

// ListJobs returns up to PageSize+1 rows so callers can tell whether another page exists
func (s *Storage) ListJobs(ctx context.Context, tenantID string, filter JobFilter) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	argIdx := 2

	if filter.StatusID != "" {
		query += fmt.Sprintf(" AND status_id = $%d", argIdx)
		args = append(args, filter.StatusID)
		argIdx++
	}

	if filter.TypeID != "" {
		query += fmt.Sprintf(" AND type_id = $%d", argIdx)
		args = append(args, filter.TypeID)
		argIdx++
	}

	if filter.AssigneeID != "" {
		query += fmt.Sprintf(" AND assignee_id = $%d", argIdx)
		args = append(args, filter.AssigneeID)
		argIdx++
	}

	if filter.DepartmentID != "" {
		query += fmt.Sprintf(" AND department_id = $%d", argIdx)
		args = append(args, filter.DepartmentID)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(` AND title ILIKE $%d ESCAPE '\'`, argIdx)
		args = append(args, containsPattern(filter.Search))
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.ID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, mapError(err, "list jobs")
	}
	return jobs, nil
}
