package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cuongbtq/opsboard/internal/api/domain"
	"github.com/cuongbtq/opsboard/shared/postgresql"
)

// PostgreSQL error codes we translate into domain errors
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// Storage handles all database access for the API. Every query is scoped to a tenant.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewStorage(pg *postgresql.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     pg.GetDB(),
		logger: logger,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere in
// the value. Queries using it must declare ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// mapError turns driver errors into domain errors and wraps everything else
func mapError(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, pqErr.Constraint)
		case pgForeignKeyViolation:
			return &domain.ValidationError{
				Message: fmt.Sprintf("referenced resource is missing or still in use (%s)", pqErr.Constraint),
			}
		case pgCheckViolation:
			return &domain.ValidationError{
				Message: fmt.Sprintf("value violates constraint %s", pqErr.Constraint),
			}
		}
	}

	return fmt.Errorf("failed to %s: %w", action, err)
}

// requireAffected reports ErrNotFound when an UPDATE or DELETE matched nothing
func requireAffected(result sql.Result, action string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
