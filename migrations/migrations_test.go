package migrations

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/opsboard/shared/logger"
)

func TestFS_ContainsAnnotatedMigrations(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		data, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", name)
		assert.Contains(t, string(data), "-- +goose Down", name)
	}
}

func TestFS_StatusColorConstraintMatchesValidator(t *testing.T) {
	data, err := fs.ReadFile(FS, "00001_init_schema.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "'^#[0-9A-Fa-f]{6}$'"))
}

func TestRun_UnknownCommand(t *testing.T) {
	err := Run(context.Background(), nil, "redo-everything", logger.NewNop())
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
