package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/choice-engine/pkg/engine"
	"github.com/jwebster45206/choice-engine/pkg/state"
	"github.com/jwebster45206/choice-engine/pkg/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_ShowScene(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out, 20)

	c.ShowScene(&engine.Scene{
		Header: "The rain falls on the neon street.\n\nA cook waves.",
		Choices: []engine.Choice{
			{Number: 1, Option: &story.Option{Label: "Eat"}},
			{Number: 2, Option: &story.Option{Label: "Leave"}},
		},
	})

	expected := strings.Join([]string{
		strings.Repeat("-", 20),
		"The rain falls on",
		"the neon street.",
		"A cook waves.",
		strings.Repeat("-", 20),
		"[1] Eat",
		"[2] Leave",
		"",
	}, "\n")
	assert.Equal(t, expected, out.String())
}

func TestConsole_NoClearWhenNotATerminal(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out, 40)
	assert.False(t, c.clear)

	c.ShowScene(&engine.Scene{Header: "x"})
	assert.NotContains(t, out.String(), clearScreenSequence)
}

func TestConsole_Messages(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out, 40)

	c.ShowInvalidChoice()
	c.ShowFarewell()
	c.ShowInterrupted()

	assert.Equal(t, InvalidChoiceText+"\n"+FarewellText+"\n\n"+InterruptedText+"\n", out.String())
}

func TestConsole_ReadLine(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("1\n  2  \n"), &out, 40)
	ctx := context.Background()

	line, err := c.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", line)

	line, err = c.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "  2  ", line)

	_, err = c.ReadLine(ctx)
	assert.ErrorIs(t, err, engine.ErrInterrupted)
	assert.Equal(t, strings.Repeat(Prompt, 3), out.String())
}

func TestConsole_ReadLineWithoutTrailingNewline(t *testing.T) {
	c := New(strings.NewReader("3\r\n4"), io.Discard, 40)

	line, err := c.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3", line)

	line, err = c.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4", line)

	_, err = c.ReadLine(context.Background())
	assert.ErrorIs(t, err, engine.ErrInterrupted)
}

func TestConsole_ReadLineCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	c := New(pr, io.Discard, 40)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.ReadLine(ctx)
	assert.ErrorIs(t, err, engine.ErrInterrupted)
}

func TestWrapHeader(t *testing.T) {
	assert.Empty(t, WrapHeader("\n\n", 80))
	assert.Equal(t, []string{"short"}, WrapHeader("  short  ", 80))
	assert.Equal(t, []string{"one two", "three"}, WrapHeader("one two three", 8))
}

func TestConsole_RunsSession(t *testing.T) {
	s, err := story.New(map[string]story.Location{
		"start": {
			InitialHeader: "You wake up.",
			Header:        "Awake again.",
			Options:       []story.Option{{Label: "Go", Goto: "middle"}},
		},
		"middle": {Header: "A bar.", Options: []story.Option{{Label: "Finish", Goto: "end"}}},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	c := New(strings.NewReader("7\n1\n1\n"), &out, 30)

	err = engine.Run(context.Background(), engine.New(s, state.NewGameState(), nil), c, c)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "You wake up.")
	assert.NotContains(t, text, "Awake again.")
	assert.Contains(t, text, InvalidChoiceText)
	assert.Contains(t, text, "[1] Finish")
	assert.True(t, strings.HasSuffix(text, FarewellText+"\n"))
}

func TestConsole_OverlongLineIsRejected(t *testing.T) {
	s, err := story.New(map[string]story.Location{
		"start": {Header: "A door.", Options: []story.Option{{Label: "Open", Goto: "end"}}},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	c := New(strings.NewReader(strings.Repeat("x", 70000)+"\n1\n"), &out, 30)

	err = engine.Run(context.Background(), engine.New(s, state.NewGameState(), nil), c, c)
	require.NoError(t, err)

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, InvalidChoiceText))
	assert.Equal(t, 2, strings.Count(text, Prompt))
	assert.True(t, strings.HasSuffix(text, FarewellText+"\n"))
}
