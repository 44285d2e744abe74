package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/report-card/internal/config"
	"github.com/aanand-mishra/report-card/internal/storage/memory"
	"github.com/aanand-mishra/report-card/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	ctx := context.Background()

	assert.False(t, setupLogger("prod").Enabled(ctx, slog.LevelDebug))
	assert.True(t, setupLogger("prod").Enabled(ctx, slog.LevelInfo))
	assert.True(t, setupLogger("staging").Enabled(ctx, slog.LevelDebug))
	assert.True(t, setupLogger("dev").Enabled(ctx, slog.LevelDebug))
}

func TestOpenStorage(t *testing.T) {
	store, closer, err := openStorage(&config.Config{StorageDriver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Memory{}, store)
	assert.NoError(t, closer.Close())

	store, closer, err = openStorage(&config.Config{
		StorageDriver: config.DriverSQLite,
		StoragePath:   filepath.Join(t.TempDir(), "students.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.SQLite{}, store)
	assert.NoError(t, closer.Close())

	_, _, err = openStorage(&config.Config{StorageDriver: "mongo"})
	assert.Error(t, err)
}
