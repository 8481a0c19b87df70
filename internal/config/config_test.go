package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("STORY_DIR", "")
	t.Setenv("TERMINAL_WIDTH", "")
	t.Setenv("LOG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "", cfg.StoryDir)
	assert.Equal(t, "", cfg.LogFile)
	assert.Equal(t, DefaultTerminalWidth, cfg.TerminalWidth)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STORY_DIR", "/srv/stories")
	t.Setenv("TERMINAL_WIDTH", "120")
	t.Setenv("LOG_FILE", "/tmp/adventure.log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/srv/stories", cfg.StoryDir)
	assert.Equal(t, 120, cfg.TerminalWidth)
	assert.Equal(t, "/tmp/adventure.log", cfg.LogFile)
}

func TestLoad_InvalidWidth(t *testing.T) {
	for _, width := range []string{"wide", "10", "-80"} {
		t.Run(width, func(t *testing.T) {
			t.Setenv("TERMINAL_WIDTH", width)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelWarn,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, parseLogLevel(in), in)
	}
}
