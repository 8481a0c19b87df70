package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jwebster45206/choice-engine/pkg/state"
	"github.com/jwebster45206/choice-engine/pkg/story"
	"golang.org/x/text/width"
)

var (
	ErrInvalidChoice = errors.New("invalid choice")
	ErrInterrupted   = errors.New("interrupted")
	ErrFinished      = errors.New("playthrough finished")
	ErrNoScene       = errors.New("no location entered")
	ErrDeadEnd       = errors.New("no visible options")
)

// Choice is a visible option together with its display number.
type Choice struct {
	Number int
	Option *story.Option
}

// Scene is what the player sees on entering a location.
type Scene struct {
	LocationID string
	Source     string // File the location was read from
	Header     string
	FirstVisit bool     // Header is the first-visit variant
	Visits     int      // Entries into this location, including this one
	Choices    []Choice // Visible options numbered 1..n in declaration order
	Ending     bool     // The location offers no options; the playthrough is over
}

// Choice returns the visible option with display number n.
func (s *Scene) Choice(n int) (*Choice, bool) {
	if n < 1 || n > len(s.Choices) {
		return nil, false
	}
	return &s.Choices[n-1], true
}

// Engine steps one playthrough of a story. It is not safe for concurrent use.
type Engine struct {
	story    *story.Story
	gs       *state.GameState
	logger   *slog.Logger
	scene    *Scene
	finished bool
}

// New creates an engine positioned at the story's start location.
func New(s *story.Story, gs *state.GameState, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if gs.Location == "" {
		gs.Location = story.StartID
	}
	return &Engine{
		story:  s,
		gs:     gs,
		logger: logger,
	}
}

// WithStart moves the player to a different starting location
// Returns the Engine for method chaining
func (e *Engine) WithStart(locationID string) *Engine {
	e.gs.Location = locationID
	return e
}

// State returns the game state the engine mutates.
func (e *Engine) State() *state.GameState { return e.gs }

// Current returns the id of the location the player is in or about to enter.
func (e *Engine) Current() string { return e.gs.Location }

// Finished reports whether the playthrough has ended.
func (e *Engine) Finished() bool { return e.finished }

// Enter moves the player into the current location: it picks the header,
// records the visit and numbers the visible options.
func (e *Engine) Enter() (*Scene, error) {
	if e.finished {
		return nil, ErrFinished
	}

	id := e.gs.Location
	loc, err := e.story.Location(id)
	if err != nil {
		return nil, err
	}

	// The header depends on visits strictly before this one.
	prior := e.gs.Visits(id)
	scene := &Scene{
		LocationID: id,
		Source:     loc.Source,
		Header:     loc.HeaderFor(prior),
		FirstVisit: prior == 0 && loc.InitialHeader != "",
		Visits:     e.gs.Visit(id),
	}

	for i := range loc.Options {
		opt := &loc.Options[i]
		visible, err := IsVisible(opt, e.gs)
		if err != nil {
			return nil, &story.DataError{Source: loc.Source, Location: id, Err: err}
		}
		if visible {
			scene.Choices = append(scene.Choices, Choice{Number: len(scene.Choices) + 1, Option: opt})
		}
	}

	switch {
	case len(loc.Options) == 0:
		scene.Ending = true
		e.finished = true
	case len(scene.Choices) == 0:
		return nil, &story.DataError{Source: loc.Source, Location: id, Err: ErrDeadEnd}
	}

	e.logger.Debug("Entered location",
		"location", id,
		"visits", scene.Visits,
		"first_visit", scene.FirstVisit,
		"visible_choices", len(scene.Choices),
		"total_options", len(loc.Options))

	e.scene = scene
	return scene, nil
}

// Choose applies the option with display number n from the last entered
// scene. An out-of-range number returns ErrInvalidChoice and changes nothing.
func (e *Engine) Choose(n int) error {
	if e.finished {
		return ErrFinished
	}
	if e.scene == nil {
		return ErrNoScene
	}

	choice, ok := e.scene.Choice(n)
	if !ok {
		return fmt.Errorf("%w: %d is not between 1 and %d", ErrInvalidChoice, n, len(e.scene.Choices))
	}

	opt := choice.Option
	if err := ApplyEffect(opt, e.gs); err != nil {
		return &story.DataError{Source: e.scene.Source, Location: e.scene.LocationID, Err: err}
	}

	e.logger.Debug("Option chosen",
		"location", e.scene.LocationID,
		"choice", n,
		"label", opt.Label,
		"goto", opt.Goto)

	e.scene = nil
	if opt.Terminal() {
		e.finished = true
		return nil
	}
	e.gs.Location = opt.Goto
	return nil
}

// IsVisible reports whether an option should be offered. Options without a
// condition are always visible. The condition only gets read access to gs.
func IsVisible(opt *story.Option, gs *state.GameState) (bool, error) {
	cond := opt.CompiledCondition()
	if cond == nil {
		return true, nil
	}
	return cond.Test(gs)
}

// ApplyEffect runs an option's side effect against gs. Options without one are a no-op.
func ApplyEffect(opt *story.Option, gs *state.GameState) error {
	effect := opt.CompiledEffect()
	if effect == nil {
		return nil
	}
	return effect.Exec(gs)
}

// ParseChoice turns a line typed by the player into a display number.
// Surrounding space is ignored and full-width digits are accepted.
func ParseChoice(input string) (int, error) {
	text := strings.TrimSpace(width.Narrow.String(input))
	if !isDisplayNumber(text) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, input)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, input)
	}
	return n, nil
}

// isDisplayNumber accepts digits exactly as a menu number is printed: no
// sign and no leading zero.
func isDisplayNumber(text string) bool {
	if text == "" || text[0] == '0' {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}
