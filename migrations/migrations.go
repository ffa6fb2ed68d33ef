// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

// ErrUnknownCommand is returned by Run for unsupported goose commands
var ErrUnknownCommand = errors.New("unknown migration command")

type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Printf(format string, v ...any) {
	a.logger.Info(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Fatalf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

func setup(logger *slog.Logger) error {
	goose.SetBaseFS(FS)
	goose.SetLogger(slogAdapter{logger: logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Run executes a goose command ("up", "down", "status", "version") against db
func Run(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if err := setup(logger); err != nil {
		return err
	}

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "version":
		var version int64
		version, err = goose.GetDBVersionContext(ctx, db)
		if err == nil {
			logger.Info("Current schema version", slog.Int64("version", version))
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}

	if err != nil {
		return fmt.Errorf("failed to run migration %s: %w", command, err)
	}
	return nil
}

// Up applies all pending migrations
func Up(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return Run(ctx, db, "up", logger)
}
