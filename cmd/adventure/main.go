package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jwebster45206/choice-engine/internal/config"
	"github.com/jwebster45206/choice-engine/internal/console"
	"github.com/jwebster45206/choice-engine/internal/logger"
	"github.com/jwebster45206/choice-engine/pkg/engine"
	"github.com/jwebster45206/choice-engine/pkg/state"
	"github.com/jwebster45206/choice-engine/stories"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = closeLog() // Ignore error in defer
	}()

	s, err := stories.Open(cfg.StoryDir)
	if err != nil {
		log.Error("Failed to load story", "story_dir", cfg.StoryDir, "error", err)
		fmt.Fprintf(os.Stderr, "Could not load the story: %v\n", err)
		_ = closeLog()
		os.Exit(1)
	}

	gs := state.NewGameState()
	log = logger.WithSessionID(log, gs.ID)
	log.Info("Starting playthrough", "story_dir", cfg.StoryDir, "locations", s.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := console.New(os.Stdin, os.Stdout, cfg.TerminalWidth)
	err = engine.Run(ctx, engine.New(s, gs, log), c, c)
	switch {
	case err == nil, errors.Is(err, engine.ErrInterrupted):
		return
	default:
		logger.WithError(log, err).Error("Playthrough aborted", "location", gs.Location)
		fmt.Fprintf(os.Stderr, "The story cannot continue: %v\n", err)
		stop()
		_ = closeLog()
		os.Exit(1)
	}
}
