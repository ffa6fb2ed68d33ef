package storage

import (
	"context"

	"github.com/cuongbtq/opsboard/internal/api/model"
)

const commentColumns = `id, tenant_id, job_id, author_id, body, created_at, updated_at`

func (s *Storage) ListComments(ctx context.Context, tenantID, jobID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	query := `SELECT ` + commentColumns + ` FROM comments WHERE tenant_id = $1 AND job_id = $2 ORDER BY created_at, id`

	if err := s.db.SelectContext(ctx, &comments, query, tenantID, jobID); err != nil {
		return nil, mapError(err, "list comments")
	}
	return comments, nil
}

func (s *Storage) GetComment(ctx context.Context, tenantID, id string) (*model.Comment, error) {
	var comment model.Comment
	query := `SELECT ` + commentColumns + ` FROM comments WHERE tenant_id = $1 AND id = $2`

	if err := s.db.GetContext(ctx, &comment, query, tenantID, id); err != nil {
		return nil, mapError(err, "get comment")
	}
	return &comment, nil
}

func (s *Storage) CreateComment(ctx context.Context, comment *model.Comment) error {
	query := `
		INSERT INTO comments (` + commentColumns + `)
		VALUES (:id, :tenant_id, :job_id, :author_id, :body, :created_at, :updated_at)
	`
	_, err := s.db.NamedExecContext(ctx, query, comment)
	return mapError(err, "create comment")
}

func (s *Storage) UpdateComment(ctx context.Context, comment *model.Comment) error {
	query := `
		UPDATE comments SET body = :body, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id
	`
	result, err := s.db.NamedExecContext(ctx, query, comment)
	if err != nil {
		return mapError(err, "update comment")
	}
	return requireAffected(result, "update comment")
}

func (s *Storage) DeleteComment(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return mapError(err, "delete comment")
	}
	return requireAffected(result, "delete comment")
}
