package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/udice/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_WritesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udice.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, path)
	require.NoError(t, err)

	logger.Info("dice roll")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"dice roll"`)
}

func TestNewLogger_ConsoleToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udice.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "console"}, path)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Error("explosion limit reached")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "explosion limit reached")
	assert.Equal(t, 1, strings.Count(out, "\n"), "console records carry no stack trace")
}

func TestNewLogger_JSONErrorsCarryStack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "udice.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, path)
	require.NoError(t, err)

	logger.Info("rolled")
	logger.Error("store failed")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], `"stacktrace"`)
	assert.Contains(t, lines[1], `"stacktrace"`)
}
