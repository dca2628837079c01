package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sleeptrack/internal/modules/tracker/dto"
	"sleeptrack/internal/platform/async"
	"sleeptrack/internal/platform/prefs"
	"sleeptrack/internal/ui/components"
	"sleeptrack/internal/ui/theme"
	ratingview "sleeptrack/internal/ui/views/rating"
	trackerview "sleeptrack/internal/ui/views/tracker"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.

type trackerPort interface {
	Loaded() *async.Task
	StartSession() *async.Task
	StopSession() *async.Task
	ClearHistory() *async.Task
	AcknowledgeNavigation()
	AcknowledgeNotification()
	Snapshot() dto.TrackerState
	Subscribe(fn func(dto.TrackerState)) func()
}

type ratingPort interface {
	Rate(input dto.RateInput) *async.Task
	Options() []dto.QualityOption
	AcknowledgeNavigation()
	Snapshot() dto.RatingState
	Subscribe(fn func(dto.RatingState)) func()
}

type historyPort interface {
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
}

// Options carries the settings the UI needs from configuration.
type Options struct {
	PrefsPath string
	ExportDir string
}

// ─── screens ─────────────────────────────────────────────────────────────────

type screenID int

const (
	screenTracker screenID = iota
	screenRating
)

// ─── async messages ──────────────────────────────────────────────────────────

// stateChangedMsg means a coordinator published something; the model reads a
// fresh snapshot rather than trusting a payload that may already be stale.
type stateChangedMsg struct{}

type loadedMsg struct{ err error }

type taskDoneMsg struct {
	op  string
	err error
}

type exportDoneMsg struct {
	out dto.ExportOutput
	err error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Start   key.Binding
	Stop    key.Binding
	Clear   key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start sleeping")),
		Stop:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "wake up")),
		Clear:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear history")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Clear},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes between the tracker and
// rating screens, consumes the coordinators' one-shot events, and owns the
// help overlay and command palette.
type Model struct {
	tracker trackerPort
	rating  ratingPort
	history historyPort
	opts    Options

	changes *changeFeed

	trackView trackerview.Model
	rateView  ratingview.Model

	screen   screenID
	state    dto.TrackerState
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int
}

func NewModel(tracker trackerPort, rating ratingPort, history historyPort, opts Options) Model {
	return Model{
		tracker:   tracker,
		rating:    rating,
		history:   history,
		opts:      opts,
		changes:   newChangeFeed(tracker, rating),
		trackView: trackerview.New(),
		rateView:  ratingview.New(rating.Options()),
		screen:    screenTracker,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.trackView.Init(),
		m.loadedCmd(),
		m.changes.wait(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
		}
		return m, m.applyState()

	case stateChangedMsg:
		return m, tea.Batch(m.applyState(), m.changes.wait())

	case taskDoneMsg:
		if msg.err != nil {
			m.status = msg.op + " failed: " + msg.err.Error()
		}
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("exported %d nights (%d open skipped)", len(msg.out.Paths), msg.out.Skipped)
		}
		return m, nil

	case ratingview.SubmitMsg:
		return m, m.runTask("rate", m.rating.Rate(msg.Input))

	case ratingview.SkipMsg:
		m.screen = screenTracker
		m.status = "rating skipped"
		return m, nil

	case components.CommandMsg:
		return m.executePalette(msg)

	case components.PaletteClosedMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.subViewCapturing() {
			break
		}

		switch {
		case msg.String() == "ctrl+c" || (msg.String() == "q" && m.screen == screenTracker):
			m.changes.close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open(m.paletteCommands())
		}

		if m.screen == screenTracker {
			switch {
			case key.Matches(msg, m.keys.Start) && m.state.StartVisible:
				return m, m.runTask("start", m.tracker.StartSession())
			case key.Matches(msg, m.keys.Stop) && m.state.StopVisible:
				return m, m.runTask("stop", m.tracker.StopSession())
			case key.Matches(msg, m.keys.Clear) && m.state.ClearVisible:
				return m, m.runTask("clear", m.tracker.ClearHistory())
			}
		}
	}

	var viewCmd tea.Cmd
	switch m.screen {
	case screenTracker:
		m.trackView, viewCmd = m.trackView.Update(msg)
	case screenRating:
		m.rateView, viewCmd = m.rateView.Update(msg)
	}
	cmds = append(cmds, viewCmd)

	return m, tea.Batch(cmds...)
}

// applyState pulls fresh snapshots and consumes any pending one-shot events.
func (m *Model) applyState() tea.Cmd {
	state := m.tracker.Snapshot()
	m.state = state
	var cmd tea.Cmd
	m.trackView, cmd = m.trackView.SetState(state)

	if state.HasNavigateToRating {
		m.tracker.AcknowledgeNavigation()
		m.rateView = m.rateView.Open(state.NavigateToRating)
		m.screen = screenRating
		m.status = "good morning"
	}
	if state.ShowNotification {
		m.tracker.AcknowledgeNotification()
		m.status = "All your data is gone forever."
	}

	rated := m.rating.Snapshot()
	if rated.NavigateToTracker {
		m.rating.AcknowledgeNavigation()
		m.screen = screenTracker
		m.status = fmt.Sprintf("night %d rated: %s", rated.LastRated.ID, rated.LastRated.QualityLabel)
	}
	return cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.screen == screenRating:
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.rateView.View())
	default:
		content = m.trackView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, statusBar)
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

// paletteCommands lists what the palette offers on the current screen. The
// tracker offers the same actions its visibility flags allow.
func (m Model) paletteCommands() []components.Command {
	if m.screen == screenRating {
		return []components.Command{components.CmdRate, components.CmdTheme}
	}
	var cmds []components.Command
	if m.state.StartVisible {
		cmds = append(cmds, components.CmdStart)
	}
	if m.state.StopVisible {
		cmds = append(cmds, components.CmdStop)
	}
	if _, ok := m.trackView.Selected(); ok {
		cmds = append(cmds, components.CmdRate)
	}
	if m.state.ClearVisible {
		cmds = append(cmds, components.CmdClear)
	}
	return append(cmds, components.CmdExport, components.CmdTheme)
}

func (m Model) executePalette(cmd components.CommandMsg) (tea.Model, tea.Cmd) {
	switch cmd.Name {
	case components.CmdStart.Name:
		if !m.state.StartVisible {
			m.status = "a night is already open"
			return m, nil
		}
		return m, m.runTask("start", m.tracker.StartSession())

	case components.CmdStop.Name:
		if !m.state.StopVisible {
			m.status = "no night is open"
			return m, nil
		}
		return m, m.runTask("stop", m.tracker.StopSession())

	case components.CmdRate.Name:
		if len(cmd.Args) < 1 {
			m.status = "usage: " + components.CmdRate.Usage
			return m, nil
		}
		quality, err := strconv.Atoi(cmd.Args[0])
		if err != nil {
			m.status = "invalid quality"
			return m, nil
		}
		night, ok := m.rateTarget()
		if !ok {
			m.status = "no night selected"
			return m, nil
		}
		notes := strings.Join(cmd.Args[1:], " ")
		return m, m.runTask("rate", m.rating.Rate(dto.RateInput{NightID: night.ID, Quality: quality, Notes: notes}))

	case components.CmdClear.Name:
		return m, m.runTask("clear", m.tracker.ClearHistory())

	case components.CmdExport.Name:
		dir := m.opts.ExportDir
		if len(cmd.Args) > 0 {
			dir = cmd.Args[0]
		}
		return m, m.exportCmd(dir)

	case components.CmdTheme.Name:
		if len(cmd.Args) < 1 {
			m.status = "usage: theme <" + strings.Join(theme.Names(), "|") + ">"
			return m, nil
		}
		if !theme.Apply(cmd.Args[0]) {
			m.status = "unknown theme: " + cmd.Args[0]
			return m, nil
		}
		m.trackView = m.trackView.Restyle()
		m.status = "theme: " + theme.Current
		if m.opts.PrefsPath != "" {
			if err := prefs.Save(m.opts.PrefsPath, prefs.Prefs{Theme: theme.Current}); err != nil {
				m.status = "save prefs: " + err.Error()
			}
		}
		return m, nil

	default:
		m.status = "unknown command: " + cmd.Name
	}
	return m, nil
}

// rateTarget is the night being rated on the rating screen, or the selected
// history entry on the tracker.
func (m Model) rateTarget() (dto.NightOutput, bool) {
	if m.screen == screenRating {
		return m.rateView.Night(), true
	}
	return m.trackView.Selected()
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewCapturing reports whether the active screen is taking free text, in
// which case global key bindings must yield.
func (m Model) subViewCapturing() bool {
	switch m.screen {
	case screenTracker:
		return m.trackView.Filtering()
	case screenRating:
		return m.rateView.Editing()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 2}
	m.trackView, _ = m.trackView.Update(sz)
	m.rateView, _ = m.rateView.Update(sz)
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) loadedCmd() tea.Cmd {
	task := m.tracker.Loaded()
	return func() tea.Msg {
		return loadedMsg{err: task.Wait(context.Background())}
	}
}

// runTask reports a coordinator task's failure. Success needs no message:
// the state change arrives through the change feed.
func (m Model) runTask(op string, task *async.Task) tea.Cmd {
	return func() tea.Msg {
		return taskDoneMsg{op: op, err: task.Wait(context.Background())}
	}
}

func (m Model) exportCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.history.Export(context.Background(), dto.ExportInput{Dir: dir})
		return exportDoneMsg{out: out, err: err}
	}
}
