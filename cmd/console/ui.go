package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/choice-engine/internal/console"
	"github.com/jwebster45206/choice-engine/pkg/engine"
	"github.com/jwebster45206/choice-engine/pkg/state"
	"github.com/muesli/reflow/wordwrap"
)

const (
	Title           = "CHOICE ENGINE"
	PlaceHolderText = "Type an option number or /help..."
	ExitHintText    = "Press Enter to exit."
)

type entryKind int

const (
	sceneEntry entryKind = iota
	playerEntry
	noticeEntry
	errorEntry
	helpEntry
)

// transcriptEntry is one block of the story transcript. Entries keep their
// raw text so the transcript can be re-wrapped when the window resizes.
type transcriptEntry struct {
	kind    entryKind
	text    string
	choices []string // numbered option lines, scene entries only
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine    *engine.Engine
	logger    *slog.Logger
	scene     *engine.Scene
	entries   []transcriptEntry
	copyText  func(string) error
	storyView viewport.Model
	metaView  viewport.Model
	textarea  textarea.Model
	ready     bool
	width     int
	height    int

	err         error // fatal story data error
	interrupted bool
	finished    bool

	// Quit confirmation state
	showQuitModal bool
}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

// NewConsoleUI builds the model around an engine that has already entered
// its first scene.
func NewConsoleUI(e *engine.Engine, first *engine.Scene, logger *slog.Logger) ConsoleUI {
	if logger == nil {
		logger = slog.Default()
	}

	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(console.Prompt)
	ta.CharLimit = 100
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	m := ConsoleUI{
		engine:    e,
		logger:    logger,
		copyText:  clipboard.WriteAll,
		textarea:  ta,
		storyView: storyVp,
		metaView:  metaVp,
	}
	m.showScene(first)
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyView, vpCmd = m.storyView.Update(msg)
		m.metaView, mvCmd = m.metaView.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		storyWidth, metaWidth := panelWidths(m.width)
		m.storyView.Width = storyWidth - 2
		m.storyView.Height = m.height - 7
		m.metaView.Width = metaWidth - 2
		m.metaView.Height = m.height - 4
		m.textarea.SetWidth(storyWidth - 4)
		m.ready = true

		// Reformat everything for the new width
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.finished || m.err != nil {
				return m, tea.Quit
			}

			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			m.submitChoice(input)
			m.refresh()
			return m, nil
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.storyView, vpCmd = m.storyView.Update(msg)
	m.metaView, mvCmd = m.metaView.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// submitChoice applies one line of player input to the engine and enters
// the next scene.
func (m *ConsoleUI) submitChoice(input string) {
	n, err := engine.ParseChoice(input)
	if err == nil {
		var label string
		if choice, ok := m.scene.Choice(n); ok {
			label = choice.Option.Label
		}
		err = m.engine.Choose(n)
		if err == nil {
			m.entries = append(m.entries, transcriptEntry{kind: playerEntry, text: label})
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, engine.ErrInvalidChoice):
		m.entries = append(m.entries, transcriptEntry{kind: noticeEntry, text: console.InvalidChoiceText})
		return
	default:
		m.fail(err)
		return
	}

	if m.engine.Finished() {
		m.finish()
		return
	}

	scene, err := m.engine.Enter()
	if err != nil {
		m.fail(err)
		return
	}
	m.showScene(scene)
}

func (m *ConsoleUI) showScene(scene *engine.Scene) {
	m.scene = scene
	entry := transcriptEntry{kind: sceneEntry, text: scene.Header}
	for _, c := range scene.Choices {
		entry.choices = append(entry.choices, fmt.Sprintf("[%d] %s", c.Number, c.Option.Label))
	}
	m.entries = append(m.entries, entry)
	if scene.Ending {
		m.finish()
	}
}

func (m *ConsoleUI) finish() {
	m.finished = true
	m.scene = nil
	m.entries = append(m.entries,
		transcriptEntry{kind: noticeEntry, text: console.FarewellText},
		transcriptEntry{kind: noticeEntry, text: ExitHintText})
}

func (m *ConsoleUI) fail(err error) {
	m.err = err
	m.logger.Error("Playthrough aborted", "location", m.engine.Current(), "error", err)
	m.entries = append(m.entries,
		transcriptEntry{kind: errorEntry, text: "Error: " + err.Error()},
		transcriptEntry{kind: noticeEntry, text: ExitHintText})
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		m.entries = append(m.entries, transcriptEntry{kind: helpEntry, text: `Commands:
• /help - Show this help
• /vars - Show story variables and visit counts
• /copy - Copy the transcript to the clipboard
• Ctrl+C - Quit game

How to play:
• Type the number of an option and press Enter`})

	case "/vars":
		m.entries = append(m.entries, transcriptEntry{kind: helpEntry, text: writeVars(m.engine.State())})

	case "/copy":
		if err := m.copyText(m.Transcript()); err != nil {
			m.logger.Warn("Failed to copy transcript", "error", err)
			m.entries = append(m.entries, transcriptEntry{kind: errorEntry, text: "Could not copy transcript: " + err.Error()})
		} else {
			m.entries = append(m.entries, transcriptEntry{kind: noticeEntry, text: "Transcript copied to clipboard."})
		}

	default:
		m.entries = append(m.entries, transcriptEntry{kind: noticeEntry, text: fmt.Sprintf("Unknown command %s. Try /help.", cmd)})
	}

	m.refresh()
	return m, nil
}

// Transcript renders the story so far as unstyled text.
func (m ConsoleUI) Transcript() string {
	var b strings.Builder
	for _, e := range m.entries {
		switch e.kind {
		case sceneEntry:
			b.WriteString(e.text + "\n")
			for _, c := range e.choices {
				b.WriteString(c + "\n")
			}
		case playerEntry:
			b.WriteString("You: " + e.text + "\n")
		case helpEntry:
			continue
		default:
			b.WriteString(e.text + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// refresh rebuilds both panels for the current viewport width.
func (m *ConsoleUI) refresh() {
	m.storyView.SetContent(m.writeStoryContent())
	m.storyView.GotoBottom()
	m.metaView.SetContent(writeMetadata(m.engine.State(), m.scene))
}

func (m ConsoleUI) writeStoryContent() string {
	width := m.storyView.Width - 6 // Account for left(3) + right(3) padding
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(Title) + "\n\n")
	for _, e := range m.entries {
		switch e.kind {
		case sceneEntry:
			content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n")
			for _, line := range console.WrapHeader(e.text, width) {
				content.WriteString(headerStyle.Render(line) + "\n")
			}
			content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n")
			for _, c := range e.choices {
				content.WriteString(choiceStyle.Render(wordwrap.String(c, width)) + "\n")
			}
		case playerEntry:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, width-5) + "\n")
		case noticeEntry:
			content.WriteString(noticeStyle.Render(wordwrap.String(e.text, width)) + "\n")
		case errorEntry:
			content.WriteString(errorStyle.Render(wordwrap.String(e.text, width)) + "\n")
		case helpEntry:
			content.WriteString(wordwrap.String(e.text, width) + "\n")
		}
		content.WriteString("\n")
	}
	return content.String()
}

func writeMetadata(gs *state.GameState, scene *engine.Scene) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString("Location:\n")
	content.WriteString(gs.Location + "\n\n")

	if scene != nil {
		content.WriteString("Visits here:\n")
		content.WriteString(fmt.Sprintf("%d\n\n", scene.Visits))
	}

	content.WriteString(writeVars(gs))

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Choose\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /vars: Variables\n")
	content.WriteString("• /copy: Copy\n")

	return content.String()
}

func writeVars(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString("Variables:\n")
	names := gs.VarNames()
	if len(names) == 0 {
		content.WriteString("None set\n")
	}
	for _, name := range names {
		v, _ := gs.Lookup(name)
		content.WriteString(fmt.Sprintf("• %s = %#v\n", name, v))
	}

	content.WriteString("\nVisits:\n")
	for _, id := range gs.VisitedIDs() {
		content.WriteString(fmt.Sprintf("• %s: %d\n", id, gs.Visits(id)))
	}
	return content.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			m.interrupted = true
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				m.interrupted = true
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the story?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	// Center the modal
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth, metaWidth := panelWidths(m.width)

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.storyView.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", storyWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaView.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}

// panelWidths splits the window 75/25 between the story and the state panel.
func panelWidths(total int) (story, meta int) {
	story = int(float64(total)*0.75) - 4
	meta = total - story - 6
	return story, meta
}
