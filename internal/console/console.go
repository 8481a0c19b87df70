// Package console is the plain line-oriented terminal front end: it prints
// each location as wrapped text followed by a numbered menu and reads one
// line of input per turn.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jwebster45206/choice-engine/pkg/engine"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/wordwrap"
)

const (
	Prompt              = "> "
	InvalidChoiceText   = "Choose one of the offered options"
	FarewellText        = "Thanks for playing!"
	InterruptedText     = "Exiting on keyboard interrupt"
	clearScreenSequence = "\x1b[H\x1b[2J"
)

// Console implements engine.Presenter and engine.InputCollector over a
// reader/writer pair, normally stdin and stdout.
type Console struct {
	out   io.Writer
	in    io.Reader
	width int
	clear bool

	startReader sync.Once
	lines       chan lineResult
}

type lineResult struct {
	line string
	err  error
}

var (
	_ engine.Presenter      = (*Console)(nil)
	_ engine.InputCollector = (*Console)(nil)
)

// New creates a console that wraps text to width columns. The screen is
// cleared before each location only when out is a terminal.
func New(in io.Reader, out io.Writer, width int) *Console {
	return &Console{
		out:   out,
		in:    in,
		width: width,
		clear: isTerminal(out),
		lines: make(chan lineResult),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShowScene prints the location header between separators, then one
// "[n] label" line per visible option.
func (c *Console) ShowScene(scene *engine.Scene) {
	if c.clear {
		fmt.Fprint(c.out, clearScreenSequence)
	}

	separator := strings.Repeat("-", c.width)
	fmt.Fprintln(c.out, separator)
	for _, line := range WrapHeader(scene.Header, c.width) {
		fmt.Fprintln(c.out, line)
	}
	fmt.Fprintln(c.out, separator)

	for _, choice := range scene.Choices {
		fmt.Fprintf(c.out, "[%d] %s\n", choice.Number, choice.Option.Label)
	}
}

func (c *Console) ShowInvalidChoice() { fmt.Fprintln(c.out, InvalidChoiceText) }

func (c *Console) ShowFarewell() { fmt.Fprintln(c.out, FarewellText) }

func (c *Console) ShowInterrupted() {
	// Start on a fresh line; the interrupt usually arrives mid-prompt.
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, InterruptedText)
}

// ReadLine prints the prompt and waits for a line of input. End of input and
// a cancelled ctx both return engine.ErrInterrupted.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	c.startReader.Do(func() { go c.scan() })

	fmt.Fprint(c.out, Prompt)
	select {
	case <-ctx.Done():
		return "", engine.ErrInterrupted
	case res, ok := <-c.lines:
		if !ok {
			return "", engine.ErrInterrupted
		}
		return res.line, res.err
	}
}

// scan runs for the life of the console. A blocked read cannot be abandoned,
// so it lives on its own goroutine and ReadLine stops listening instead.
// Lines have no length limit; an overlong one is just another bad choice.
func (c *Console) scan() {
	defer close(c.lines)
	reader := bufio.NewReader(c.in)
	for {
		line, err := reader.ReadString('\n')
		if line != "" || err == nil {
			c.lines <- lineResult{line: strings.TrimRight(line, "\r\n")}
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			c.lines <- lineResult{err: fmt.Errorf("failed to read input: %w", err)}
			return
		}
	}
}

// WrapHeader splits a header on newlines, drops empty paragraphs and wraps
// each remaining one to width columns.
func WrapHeader(header string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(header, "\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		wrapped := wordwrap.String(paragraph, width)
		for _, line := range strings.Split(wrapped, "\n") {
			lines = append(lines, strings.TrimRight(line, " "))
		}
	}
	return lines
}
