// Package tui provides a Bubble Tea terminal user interface for ultimate-tab.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/ultimate-tab/internal/acquire"
	"github.com/handiism/ultimate-tab/internal/config"
	ioutils "github.com/handiism/ultimate-tab/internal/io"
	"github.com/handiism/ultimate-tab/internal/model"
	"github.com/handiism/ultimate-tab/internal/tab"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)

	songStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	// ChordStyle colours chord rows of a sheet.
	ChordStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateFetching
	StateViewing
	StateError
)

// ViewMode selects how a fetched tab is shown.
type ViewMode int

const (
	ViewSheet ViewMode = iota
	ViewLyrics
	ViewChords
)

var viewModeNames = []string{"sheet", "lyrics", "chords"}

func (v ViewMode) String() string {
	return viewModeNames[v]
}

// next cycles sheet → lyrics → chords → sheet.
func (v ViewMode) next() ViewMode {
	return (v + 1) % ViewMode(len(viewModeNames))
}

// maxLogs is the number of progress lines kept on screen.
const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   acquire.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	settings  *config.Settings
	logs      []LogEntry
	result    *model.Result
	mode      ViewMode
	savedPath string
	err       error

	// Fetch context
	ctx    context.Context
	cancel context.CancelFunc
	events chan acquire.ProgressEvent

	// orchestrator lives as long as the model so its cache survives "r".
	orchestrator *acquire.Orchestrator

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings uses the defaults.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return newModel(settings, acquire.NewFromSettings(settings, nil))
}

func newModel(settings *config.Settings, orchestrator *acquire.Orchestrator) Model {

	ti := textinput.New()
	ti.Placeholder = "https://tabs.ultimate-guitar.com/tab/artist/song-chords-123456"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		viewport:  viewport.New(80, 20),
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,

		orchestrator: orchestrator,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent for each acquisition progress event.
	ProgressMsg struct {
		Event acquire.ProgressEvent
	}

	// FetchDoneMsg is sent when the acquisition finishes.
	FetchDoneMsg struct {
		Result *model.Result
		Err    error
	}

	// SavedMsg is sent after the shown tab was written to disk.
	SavedMsg struct {
		Path string
		Err  error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-12, 5)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateFetching {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
				return m, nil
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				cmd := m.startFetch(strings.TrimSpace(m.textInput.Value()))
				return m, cmd
			}

		case "tab":
			if m.state == StateViewing {
				m.mode = m.mode.next()
				m.refreshViewport()
				return m, nil
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "s":
			if m.state == StateViewing {
				cmd := m.saveResult()
				return m, cmd
			}

		case "q":
			if m.state == StateViewing || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateViewing || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		if msg.Event.Level == acquire.LevelVerbose && !m.verbose {
			return m, tea.Batch(cmds...)
		}
		m.appendLog(msg.Event.Message, msg.Event.Level)

	case FetchDoneMsg:
		if m.state != StateFetching {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.result = msg.Result
		m.mode = ViewSheet
		m.state = StateViewing
		m.refreshViewport()

	case SavedMsg:
		if msg.Err != nil {
			m.appendLog(fmt.Sprintf("Save failed: %v", msg.Err), acquire.LevelError)
		} else {
			m.savedPath = msg.Path
		}
	}

	switch m.state {
	case StateInput:
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	case StateViewing:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) appendLog(message string, level acquire.ProgressLevel) {
	m.logs = append(m.logs, LogEntry{Message: message, Level: level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) reset() {
	m.cancel()
	m.state = StateInput
	m.logs = nil
	m.result = nil
	m.err = nil
	m.savedPath = ""
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

// startFetch checks the URL and runs the acquisition in the background,
// streaming its progress events back as ProgressMsg.
func (m *Model) startFetch(url string) tea.Cmd {
	if !m.settings.IsAllowedURL(url) {
		m.state = StateError
		m.err = fmt.Errorf("URL not allowed: %s (allowed hosts: %s)", url, strings.Join(m.settings.AllowedHosts, ", "))
		return nil
	}

	m.state = StateFetching
	m.logs = nil

	events := make(chan acquire.ProgressEvent, 32)
	m.events = events

	ctx, o := m.ctx, m.orchestrator
	run := func() tea.Msg {
		defer close(events)
		res, err := o.FetchWith(ctx, url, func(e acquire.ProgressEvent) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		})
		return FetchDoneMsg{Result: res, Err: err}
	}

	return tea.Batch(run, waitForEvent(events), m.spinner.Tick)
}

// waitForEvent returns a command that delivers the next progress event.
func waitForEvent(events <-chan acquire.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: e}
	}
}

func (m *Model) saveResult() tea.Cmd {
	res, mode, ctx := m.result, m.mode, m.ctx
	return func() tea.Msg {
		path, err := ioutils.SaveTab(ctx, ".", res.Metadata, "txt", []byte(content(res, mode, nil)))
		return SavedMsg{Path: path, Err: err}
	}
}

func (m *Model) refreshViewport() {
	if m.result == nil {
		return
	}
	m.viewport.SetContent(content(m.result, m.mode, func(s string) string {
		return ChordStyle.Render(s)
	}))
	m.viewport.GotoTop()
}

// content renders res in the given mode. style colours chord rows of the
// sheet and may be nil.
func content(res *model.Result, mode ViewMode, style func(string) string) string {
	switch mode {
	case ViewLyrics:
		return tab.LyricsText(res.DualTrack)
	case ViewChords:
		return tab.ChordsText(res.DualTrack)
	default:
		return tab.SheetFunc(res.Combined, style)
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎸 Ultimate Tab"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Chords and lyrics from Ultimate Guitar"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateFetching:
		b.WriteString(m.viewFetching())
	case StateViewing:
		b.WriteString(m.viewResult())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter tab URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Rendered retries: %d", m.settings.RenderMaxRetries)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewFetching() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching tab..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewResult() string {
	var b strings.Builder
	meta := m.result.Metadata

	b.WriteString(songStyle.Render(fmt.Sprintf("%s - %s", meta.Artist, meta.Title)))
	b.WriteString("\n")
	if details := detailsLine(meta); details != "" {
		b.WriteString(infoStyle.Render(details))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	tabs := make([]string, len(viewModeNames))
	for i, name := range viewModeNames {
		if ViewMode(i) == m.mode {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = dimStyle.Render(name)
		}
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n")

	b.WriteString(boxStyle.Render(m.viewport.View()))
	b.WriteString("\n")

	if n := len(m.result.Attempts); n > 0 {
		b.WriteString(dimStyle.Render("via " + m.result.Attempts[n-1].String()))
		b.WriteString("\n")
	}
	if m.savedPath != "" {
		b.WriteString(successStyle.Render("✓ Saved to " + m.savedPath))
		b.WriteString("\n")
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func detailsLine(meta model.Metadata) string {
	var parts []string
	if meta.Author != "" && meta.Author != model.Unknown {
		parts = append(parts, "by "+meta.Author)
	}
	for _, f := range []struct{ label, value string }{
		{"Difficulty", meta.Difficulty},
		{"Key", meta.Key},
		{"Capo", meta.Capo},
		{"Tuning", meta.Tuning},
	} {
		if f.value != "" {
			parts = append(parts, f.label+": "+f.value)
		}
	}
	return strings.Join(parts, " • ")
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case acquire.LevelError:
			style = errorStyle
			prefix = "✗"
		case acquire.LevelWarning:
			style = warningStyle
			prefix = "!"
		case acquire.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case acquire.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: fetch • ctrl+v: verbose • esc: quit"
	case StateFetching:
		return "esc: cancel"
	case StateViewing:
		return "tab: sheet/lyrics/chords • ↑/↓: scroll • s: save • r: new tab • q: quit"
	case StateError:
		return "r: try another • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
