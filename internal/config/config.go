package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const DefaultTerminalWidth = 80

type Config struct {
	Environment   string
	LogLevel      slog.Level
	LogFile       string // empty means the front end's default destination
	StoryDir      string // empty means the bundled story
	TerminalWidth int
}

func Load() (*Config, error) {
	width, err := strconv.Atoi(getEnv("TERMINAL_WIDTH", strconv.Itoa(DefaultTerminalWidth)))
	if err != nil || width < 20 {
		return nil, fmt.Errorf("invalid TERMINAL_WIDTH %q: must be an integer of at least 20", os.Getenv("TERMINAL_WIDTH"))
	}

	return &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "warn")),
		LogFile:       os.Getenv("LOG_FILE"),
		StoryDir:      os.Getenv("STORY_DIR"),
		TerminalWidth: width,
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
