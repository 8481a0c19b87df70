package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jwebster45206/choice-engine/internal/config"
)

// Setup configures the global slog logger based on environment.
// Logs go to LOG_FILE when set, otherwise to stderr so they never
// interleave with the story on stdout.
func Setup(cfg *config.Config) (*slog.Logger, func() error, error) {
	w, closeFn, err := Output(cfg, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return SetupWriter(cfg, w), closeFn, nil
}

// Output opens cfg.LogFile for appending, or returns fallback when no file is configured.
func Output(cfg *config.Config, fallback io.Writer) (io.Writer, func() error, error) {
	if cfg.LogFile == "" {
		return fallback, func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f.Close, nil
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// WithSessionID adds the playthrough's session ID to logger context
func WithSessionID(logger *slog.Logger, id uuid.UUID) *slog.Logger {
	return logger.With("session_id", id.String())
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
