package storage

import (
	"context"

	"github.com/cuongbtq/opsboard/internal/api/model"
)

const accountColumns = `id, tenant_id, user_id, provider, provider_account_id, created_at`

// ListAccounts returns linked accounts, optionally only those of one user
func (s *Storage) ListAccounts(ctx context.Context, tenantID, userID string) ([]model.Account, error) {
	accounts := []model.Account{}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	if userID != "" {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at`

	if err := s.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, mapError(err, "list accounts")
	}
	return accounts, nil
}

func (s *Storage) GetAccount(ctx context.Context, tenantID, id string) (*model.Account, error) {
	var account model.Account
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND id = $2`

	if err := s.db.GetContext(ctx, &account, query, tenantID, id); err != nil {
		return nil, mapError(err, "get account")
	}
	return &account, nil
}

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (:id, :tenant_id, :user_id, :provider, :provider_account_id, :created_at)
	`
	_, err := s.db.NamedExecContext(ctx, query, account)
	return mapError(err, "create account")
}

func (s *Storage) DeleteAccount(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return mapError(err, "delete account")
	}
	return requireAffected(result, "delete account")
}
