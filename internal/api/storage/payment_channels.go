package storage

import (
	"context"

	"github.com/cuongbtq/opsboard/internal/api/model"
)

const paymentChannelColumns = `id, tenant_id, name, description, is_active, created_at, updated_at`

func (s *Storage) ListPaymentChannels(ctx context.Context, tenantID string, activeOnly bool) ([]model.PaymentChannel, error) {
	channels := []model.PaymentChannel{}
	query := `SELECT ` + paymentChannelColumns + ` FROM payment_channels WHERE tenant_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY name`

	if err := s.db.SelectContext(ctx, &channels, query, tenantID); err != nil {
		return nil, mapError(err, "list payment channels")
	}
	return channels, nil
}

func (s *Storage) GetPaymentChannel(ctx context.Context, tenantID, id string) (*model.PaymentChannel, error) {
	var channel model.PaymentChannel
	query := `SELECT ` + paymentChannelColumns + ` FROM payment_channels WHERE tenant_id = $1 AND id = $2`

	if err := s.db.GetContext(ctx, &channel, query, tenantID, id); err != nil {
		return nil, mapError(err, "get payment channel")
	}
	return &channel, nil
}

func (s *Storage) CreatePaymentChannel(ctx context.Context, channel *model.PaymentChannel) error {
	query := `
		INSERT INTO payment_channels (` + paymentChannelColumns + `)
		VALUES (:id, :tenant_id, :name, :description, :is_active, :created_at, :updated_at)
	`
	_, err := s.db.NamedExecContext(ctx, query, channel)
	return mapError(err, "create payment channel")
}

func (s *Storage) UpdatePaymentChannel(ctx context.Context, channel *model.PaymentChannel) error {
	query := `
		UPDATE payment_channels SET
			name = :name, description = :description, is_active = :is_active, updated_at = :updated_at
		WHERE tenant_id = :tenant_id AND id = :id
	`
	result, err := s.db.NamedExecContext(ctx, query, channel)
	if err != nil {
		return mapError(err, "update payment channel")
	}
	return requireAffected(result, "update payment channel")
}

func (s *Storage) DeletePaymentChannel(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM payment_channels WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return mapError(err, "delete payment channel")
	}
	return requireAffected(result, "delete payment channel")
}
