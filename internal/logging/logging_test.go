package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("transaction added", "component", "session", "id", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "transaction added", rec["msg"])
	assert.Equal(t, "session", rec["component"])
	assert.InDelta(t, 3, rec["id"], 0)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "DEBUG", "console")
	require.NoError(t, err)

	logger.Debug("loaded", "transactions", 2)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "transactions=2")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "verbose", "console")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger, err := Setup(&buf, "warn", "console")
	require.NoError(t, err)
	assert.Same(t, logger, slog.Default())

	slog.Info("dropped")
	slog.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("error")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, lvl)
}
