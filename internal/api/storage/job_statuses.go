package storage

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/internal/api/model"
	"github.com/cuongbtq/opsboard/shared/postgresql"
)

const jobStatusColumns = `
	id, tenant_id, name, color, sort_order, next_status_id, prev_status_id,
	is_final, created_at, updated_at`

func (s *Storage) ListJobStatuses(ctx context.Context, tenantID string) ([]model.JobStatus, error) {
	statuses := []model.JobStatus{}
	query := `SELECT ` + jobStatusColumns + ` FROM job_statuses WHERE tenant_id = $1 ORDER BY sort_order, name`

	if err := s.db.SelectContext(ctx, &statuses, query, tenantID); err != nil {
		return nil, mapError(err, "list job statuses")
	}
	return statuses, nil
}

func (s *Storage) GetJobStatus(ctx context.Context, tenantID, id string) (*model.JobStatus, error) {
	var status model.JobStatus
	query := `SELECT ` + jobStatusColumns + ` FROM job_statuses WHERE tenant_id = $1 AND id = $2`

	if err := s.db.GetContext(ctx, &status, query, tenantID, id); err != nil {
		return nil, mapError(err, "get job status")
	}
	return &status, nil
}

func (s *Storage) CreateJobStatus(ctx context.Context, status *model.JobStatus) error {
	query := `
		INSERT INTO job_statuses (` + jobStatusColumns + `)
		VALUES (
			:id, :tenant_id, :name, :color, :sort_order, :next_status_id, :prev_status_id,
			:is_final, :created_at, :updated_at
		)
	`
	_, err := s.db.NamedExecContext(ctx, query, status)
	return mapError(err, "create job status")
}

func (s *Storage) UpdateJobStatus(ctx context.Context, status *model.JobStatus) error {
	query := `
		UPDATE job_statuses SET
			name = :name,
			color = :color,
			sort_order = :sort_order,
			next_status_id = :next_status_id,
			prev_status_id = :prev_status_id,
			is_final = :is_final,
			updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id
	`
	result, err := s.db.NamedExecContext(ctx, query, status)
	if err != nil {
		return mapError(err, "update job status")
	}
	return requireAffected(result, "update job status")
}

func (s *Storage) DeleteJobStatus(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM job_statuses WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return mapError(err, "delete job status")
	}
	return requireAffected(result, "delete job status")
}

// ReorderJobStatuses assigns sort_order 0..n-1 following ids. The unique
// order constraint is deferred, so intermediate duplicates are fine.
func (s *Storage) ReorderJobStatuses(ctx context.Context, tenantID string, ids []string) error {
	return postgresql.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for i, id := range ids {
			result, err := tx.ExecContext(ctx,
				`UPDATE job_statuses SET sort_order = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`,
				i, tenantID, id,
			)
			if err != nil {
				return mapError(err, "reorder job statuses")
			}
			if err := requireAffected(result, "reorder job statuses"); err != nil {
				return domain.NewValidationError("ids", "unknown status %s", id)
			}
		}
		return nil
	})
}
