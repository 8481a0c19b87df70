package engine

import (
	"context"
	"errors"
)

// Presenter renders the game to the player.
type Presenter interface {
	ShowScene(scene *Scene)
	ShowInvalidChoice()
	ShowFarewell()
	ShowInterrupted()
}

// InputCollector reads one line of player input. It returns ErrInterrupted
// when the player cancels or input ends, and must stop waiting once ctx is done.
type InputCollector interface {
	ReadLine(ctx context.Context) (string, error)
}

// Run plays the story until an ending is reached, the player interrupts, or
// the story data turns out to be broken.
//
// Invalid input is re-prompted indefinitely and never returned. An interrupt
// shows the interrupt message and returns ErrInterrupted. Any story.DataError
// is returned as is.
func Run(ctx context.Context, e *Engine, p Presenter, in InputCollector) error {
	for !e.Finished() {
		scene, err := e.Enter()
		if err != nil {
			return err
		}
		p.ShowScene(scene)
		if scene.Ending {
			break
		}

		if err := readAndChoose(ctx, e, p, in); err != nil {
			if errors.Is(err, ErrInterrupted) {
				e.logger.Info("Playthrough interrupted", "location", e.Current())
				p.ShowInterrupted()
			}
			return err
		}
	}

	e.logger.Info("Playthrough finished", "locations_visited", len(e.gs.Visited))
	p.ShowFarewell()
	return nil
}

func readAndChoose(ctx context.Context, e *Engine, p Presenter, in InputCollector) error {
	for {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		line, err := in.ReadLine(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ErrInterrupted
			}
			return err
		}

		n, err := ParseChoice(line)
		if err == nil {
			err = e.Choose(n)
		}
		if errors.Is(err, ErrInvalidChoice) {
			e.logger.Debug("Rejected input", "input", line)
			p.ShowInvalidChoice()
			continue
		}
		return err
	}
}
