package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/choice-engine/internal/config"
	"github.com/jwebster45206/choice-engine/internal/console"
	"github.com/jwebster45206/choice-engine/internal/logger"
	"github.com/jwebster45206/choice-engine/pkg/engine"
	"github.com/jwebster45206/choice-engine/pkg/state"
	"github.com/jwebster45206/choice-engine/stories"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	// The alternate screen owns the terminal, so logs are dropped unless LOG_FILE is set.
	w, closeLog, err := logger.Output(cfg, io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not set up logging: %v\n", err)
		return 1
	}
	defer func() {
		_ = closeLog() // Ignore error in defer
	}()
	log := logger.SetupWriter(cfg, w)

	s, err := stories.Open(cfg.StoryDir)
	if err != nil {
		log.Error("Failed to load story", "story_dir", cfg.StoryDir, "error", err)
		fmt.Fprintf(os.Stderr, "Could not load the story: %v\n", err)
		return 1
	}

	gs := state.NewGameState()
	log = logger.WithSessionID(log, gs.ID)

	e := engine.New(s, gs, log)
	first, err := e.Enter()
	if err != nil {
		logger.WithError(log, err).Error("Playthrough aborted", "location", gs.Location)
		fmt.Fprintf(os.Stderr, "The story cannot continue: %v\n", err)
		return 1
	}

	p := tea.NewProgram(NewConsoleUI(e, first, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}

	ui, ok := final.(ConsoleUI)
	switch {
	case !ok:
		return 1
	case ui.err != nil:
		fmt.Fprintf(os.Stderr, "The story cannot continue: %v\n", ui.err)
		return 1
	case ui.interrupted:
		fmt.Println(console.InterruptedText)
	default:
		fmt.Println(console.FarewellText)
	}
	return 0
}
