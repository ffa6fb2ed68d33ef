package storage

import (
	"context"

	"github.com/cuongbtq/opsboard/internal/api/model"
)

const departmentColumns = `id, tenant_id, name, description, manager_id, created_at, updated_at`

func (s *Storage) ListDepartments(ctx context.Context, tenantID string) ([]model.Department, error) {
	departments := []model.Department{}
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE tenant_id = $1 ORDER BY name`

	if err := s.db.SelectContext(ctx, &departments, query, tenantID); err != nil {
		return nil, mapError(err, "list departments")
	}
	return departments, nil
}

func (s *Storage) GetDepartment(ctx context.Context, tenantID, id string) (*model.Department, error) {
	var department model.Department
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE tenant_id = $1 AND id = $2`

	if err := s.db.GetContext(ctx, &department, query, tenantID, id); err != nil {
		return nil, mapError(err, "get department")
	}
	return &department, nil
}

func (s *Storage) CreateDepartment(ctx context.Context, department *model.Department) error {
	query := `
		INSERT INTO departments (` + departmentColumns + `)
		VALUES (:id, :tenant_id, :name, :description, :manager_id, :created_at, :updated_at)
	`
	_, err := s.db.NamedExecContext(ctx, query, department)
	return mapError(err, "create department")
}

func (s *Storage) UpdateDepartment(ctx context.Context, department *model.Department) error {
	query := `
		UPDATE departments SET
			name = :name, description = :description, manager_id = :manager_id, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id
	`
	result, err := s.db.NamedExecContext(ctx, query, department)
	if err != nil {
		return mapError(err, "update department")
	}
	return requireAffected(result, "update department")
}

func (s *Storage) DeleteDepartment(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM departments WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return mapError(err, "delete department")
	}
	return requireAffected(result, "delete department")
}
