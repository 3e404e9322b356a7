package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_Development(t *testing.T) {
	logger, err := Init("development", "")
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, zap.L())
}

func TestInit_FileTee(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl.log")

	logger, err := Init("production", path)
	require.NoError(t, err)

	logger.Info("hello", zap.String("stage", "extract"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"stage":"extract"`)
}
