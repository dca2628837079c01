package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"sleeptrack/internal/modules/tracker/dto"
	"sleeptrack/internal/ui/theme"
)

// ─── list item ───────────────────────────────────────────────────────────────

type nightItem struct {
	night dto.NightOutput
}

func (i nightItem) Title() string {
	first, _, _ := strings.Cut(i.night.Display, "\n")
	return fmt.Sprintf("#%d  %s", i.night.ID, strings.TrimPrefix(first, "Start: "))
}

func (i nightItem) Description() string {
	if i.night.Open {
		return "in progress"
	}
	return fmt.Sprintf("%s  %s", i.night.EndedAt.Sub(i.night.StartedAt).Round(time.Minute), i.night.QualityLabel)
}

func (i nightItem) FilterValue() string { return i.night.Display }

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders the tracker screen: tonight's status, the available actions
// and the history list with a detail pane.
type Model struct {
	state    dto.TrackerState
	list     list.Model
	detail   viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	loading  bool
	now      func() time.Time
	width    int
	height   int
}

func New() Model {
	l := list.New(nil, newDelegate(), 0, 0)
	l.Title = "Nights"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		list:    l,
		detail:  viewport.New(0, 0),
		spinner: sp,
		loading: true,
		now:     time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetState replaces the displayed state. The selection follows the same
// night when it is still in the history.
func (m Model) SetState(state dto.TrackerState) (Model, tea.Cmd) {
	m.loading = false
	m.state = state

	selected, hadSelection := m.Selected()
	items := make([]list.Item, len(state.History))
	for i, n := range state.History {
		items[i] = nightItem{night: n}
	}
	cmd := m.list.SetItems(items)
	if hadSelection {
		for i, n := range state.History {
			if n.ID == selected.ID {
				m.list.Select(i)
				break
			}
		}
	}
	m.refreshDetail()
	return m, cmd
}

// Restyle rebuilds the styles captured at construction after a theme change.
func (m Model) Restyle() Model {
	m.list.SetDelegate(newDelegate())
	m.list.Styles.Title = theme.Title
	m.spinner.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	m.resize()
	m.refreshDetail()
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshDetail()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		prevIdx := m.list.Index()
		var lCmd tea.Cmd
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.refreshDetail()
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := m.renderHeader()
	bodyH := m.height - lipgloss.Height(header)
	if bodyH < 1 {
		bodyH = 1
	}
	if m.loading {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading nights…"))
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(bodyH).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(bodyH - 2).
		Render(m.detail.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane))
}

// Selected returns the highlighted night, if any.
func (m Model) Selected() (dto.NightOutput, bool) {
	if item, ok := m.list.SelectedItem().(nightItem); ok {
		return item.night, true
	}
	return dto.NightOutput{}, false
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Actions lists the key hints for the buttons the state allows.
func Actions(state dto.TrackerState) []string {
	var actions []string
	if state.StartVisible {
		actions = append(actions, "s: start sleeping")
	}
	if state.StopVisible {
		actions = append(actions, "e: wake up")
	}
	if state.ClearVisible {
		actions = append(actions, "C: clear history")
	}
	return actions
}

// ─── private ─────────────────────────────────────────────────────────────────

func newDelegate() list.DefaultDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)
	return delegate
}

func (m *Model) resize() {
	headerH := 2
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height-headerH)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - headerH - 4
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(theme.GlamourStyle()),
		glamour.WithWordWrap(max(m.detail.Width, 20)),
	); err == nil {
		m.renderer = r
	}
}

func (m Model) renderHeader() string {
	var status string
	if m.state.HasTonight {
		status = theme.Hot.Render("● asleep") + theme.Muted.Render(" since "+humanize.RelTime(m.state.Tonight.StartedAt, m.now(), "ago", "from now"))
	} else {
		status = theme.Ok.Render("○ awake")
	}
	actions := theme.Muted.Render("  " + strings.Join(Actions(m.state), "  "))
	return status + actions + "\n"
}

func (m *Model) refreshDetail() {
	night, ok := m.Selected()
	if !ok {
		m.detail.SetContent(theme.Muted.Render("No nights yet. Press s when you go to bed."))
		return
	}
	content := detailMarkdown(night)
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			m.detail.SetContent(rendered)
			return
		}
	}
	m.detail.SetContent(content)
}

func detailMarkdown(n dto.NightOutput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Night %d\n\n", n.ID)
	for _, line := range strings.Split(n.Display, "\n") {
		label, value, found := strings.Cut(line, ": ")
		if !found {
			sb.WriteString("- " + line + "\n")
			continue
		}
		fmt.Fprintf(&sb, "- **%s**: %s\n", label, value)
	}
	if n.Open {
		sb.WriteString("\n_Still asleep._\n")
	}
	return sb.String()
}
