package storage

import (
	"context"

	"github.com/cuongbtq/opsboard/internal/api/model"
)

const jobTypeColumns = `id, tenant_id, name, color, description, created_at, updated_at`

func (s *Storage) ListJobTypes(ctx context.Context, tenantID string) ([]model.JobType, error) {
	types := []model.JobType{}
	query := `SELECT ` + jobTypeColumns + ` FROM job_types WHERE tenant_id = $1 ORDER BY name`

	if err := s.db.SelectContext(ctx, &types, query, tenantID); err != nil {
		return nil, mapError(err, "list job types")
	}
	return types, nil
}

func (s *Storage) GetJobType(ctx context.Context, tenantID, id string) (*model.JobType, error) {
	var jobType model.JobType
	query := `SELECT ` + jobTypeColumns + ` FROM job_types WHERE tenant_id = $1 AND id = $2`

	if err := s.db.GetContext(ctx, &jobType, query, tenantID, id); err != nil {
		return nil, mapError(err, "get job type")
	}
	return &jobType, nil
}

func (s *Storage) CreateJobType(ctx context.Context, jobType *model.JobType) error {
	query := `
		INSERT INTO job_types (` + jobTypeColumns + `)
		VALUES (:id, :tenant_id, :name, :color, :description, :created_at, :updated_at)
	`
	_, err := s.db.NamedExecContext(ctx, query, jobType)
	return mapError(err, "create job type")
}

func (s *Storage) UpdateJobType(ctx context.Context, jobType *model.JobType) error {
	query := `
		UPDATE job_types SET
			name = :name, color = :color, description = :description, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id
	`
	result, err := s.db.NamedExecContext(ctx, query, jobType)
	if err != nil {
		return mapError(err, "update job type")
	}
	return requireAffected(result, "update job type")
}

func (s *Storage) DeleteJobType(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM job_types WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return mapError(err, "delete job type")
	}
	return requireAffected(result, "delete job type")
}
