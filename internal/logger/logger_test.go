package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/choice-engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriter_Production(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := SetupWriter(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)

	id := uuid.New()
	WithError(WithSessionID(log, id), errors.New("boom")).Info("Story loaded")
	log.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Story loaded", entry["msg"])
	assert.Equal(t, id.String(), entry["session_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestSetupWriter_Development(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&config.Config{Environment: "development", LogLevel: slog.LevelDebug}, &buf)
	slog.Debug("Entered location", "location", "start")

	assert.Contains(t, buf.String(), "msg=\"Entered location\"")
	assert.Contains(t, buf.String(), "location=start")
}

func TestOutput(t *testing.T) {
	var fallback bytes.Buffer
	w, closeFn, err := Output(&config.Config{}, &fallback)
	require.NoError(t, err)
	assert.Same(t, &fallback, w)
	assert.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "game.log")
	w, closeFn, err = Output(&config.Config{LogFile: path}, &fallback)
	require.NoError(t, err)
	_, err = io.WriteString(w, "line\n")
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))

	_, _, err = Output(&config.Config{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")}, &fallback)
	assert.Error(t, err)
}
