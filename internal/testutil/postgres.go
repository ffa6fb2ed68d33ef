// Package testutil starts the backing services storage tests run against.
package testutil

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/cuongbtq/opsboard/migrations"
	"github.com/cuongbtq/opsboard/shared/logger"
	"github.com/cuongbtq/opsboard/shared/postgresql"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "opsboard"
	postgresPassword = "opsboard"
	postgresDatabase = "opsboard"
)

var (
	startOnce sync.Once
	server    *postgresql.Config
	startErr  error
)

// StartPostgres returns a client on a freshly created, fully migrated
// database. One container serves the whole test binary; each call gets its
// own database, dropped when t finishes. Skipped with -short or when no
// container runtime is available.
func StartPostgres(t *testing.T) *postgresql.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	startOnce.Do(func() {
		server, startErr = runContainer(context.Background())
	})
	require.NoError(t, startErr, "failed to start postgres container")

	ctx := t.Context()
	name := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := postgresql.NewClient(server, logger.NewNop())
	require.NoError(t, err)
	_, err = admin.GetDB().ExecContext(ctx, "CREATE DATABASE "+name)
	admin.Close()
	require.NoError(t, err)

	cfg := *server
	cfg.Database = name
	client, err := postgresql.NewClient(&cfg, logger.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		if admin, err := postgresql.NewClient(server, logger.NewNop()); err == nil {
			_, _ = admin.GetDB().ExecContext(context.Background(), "DROP DATABASE IF EXISTS "+name)
			admin.Close()
		}
	})

	require.NoError(t, migrations.Up(ctx, client.GetDB().DB, logger.NewNop()))
	return client
}

func runContainer(ctx context.Context) (*postgresql.Config, error) {
	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase(postgresDatabase),
		postgres.WithUsername(postgresUser),
		postgres.WithPassword(postgresPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := ctr.MappedPort(ctx, nat.Port("5432/tcp"))
	if err != nil {
		return nil, err
	}

	return &postgresql.Config{
		Host:         host,
		Port:         port.Int(),
		User:         postgresUser,
		Password:     postgresPassword,
		Database:     postgresDatabase,
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}, nil
}
