package rating

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"sleeptrack/internal/modules/tracker/dto"
	"sleeptrack/internal/ui/theme"
)

// ─── messages ────────────────────────────────────────────────────────────────

// SubmitMsg asks the app to store a rating.
type SubmitMsg struct {
	Input dto.RateInput
}

// SkipMsg asks the app to return to the tracker without rating.
type SkipMsg struct{}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the quality screen shown after a night is stopped.
type Model struct {
	night   dto.NightOutput
	options []dto.QualityOption
	cursor  int
	notes   textinput.Model
	editing bool
	width   int
	height  int
}

func New(options []dto.QualityOption) Model {
	ti := textinput.New()
	ti.Placeholder = "notes (optional)"
	ti.CharLimit = 280
	return Model{options: options, notes: ti}
}

// Open prepares the screen for night. The cursor starts on the night's
// current rating, or in the middle when it has none.
func (m Model) Open(night dto.NightOutput) Model {
	m.night = night
	m.cursor = len(m.options) / 2
	for i, o := range m.options {
		if o.Value == night.Quality {
			m.cursor = i
		}
	}
	m.notes.SetValue(night.Notes)
	m.notes.Blur()
	m.editing = false
	return m
}

func (m Model) Night() dto.NightOutput { return m.night }

// Editing reports whether the notes field has focus, in which case global
// key bindings must yield.
func (m Model) Editing() bool { return m.editing }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.notes.Width = max(m.width-8, 10)
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			switch msg.String() {
			case "enter", "esc":
				m.editing = false
				m.notes.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.notes, cmd = m.notes.Update(msg)
			return m, cmd
		}

		switch key := msg.String(); key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "n":
			m.editing = true
			return m, m.notes.Focus()
		case "enter":
			return m, m.submit(m.cursor)
		case "esc":
			return m, func() tea.Msg { return SkipMsg{} }
		default:
			for i, o := range m.options {
				if key == fmt.Sprint(o.Value) {
					m.cursor = i
					return m, m.submit(i)
				}
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("How did you sleep? (night %d)", m.night.ID)) + "\n\n")
	sb.WriteString(theme.Muted.Render(m.night.Display) + "\n\n")
	for i, o := range m.options {
		line := fmt.Sprintf("%d  %s", o.Value, o.Label)
		if i == m.cursor {
			sb.WriteString(theme.Hot.Render("▸ "+line) + "\n")
		} else {
			sb.WriteString("  " + line + "\n")
		}
	}
	sb.WriteString("\n" + m.notes.View() + "\n\n")
	sb.WriteString(theme.Muted.Render("0-5/enter: rate  ↑/↓: choose  n: notes  esc: skip"))

	return theme.PaneActive.Width(max(m.width-4, 20)).Render(sb.String())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) submit(i int) tea.Cmd {
	if i < 0 || i >= len(m.options) {
		return nil
	}
	input := dto.RateInput{
		NightID: m.night.ID,
		Quality: m.options[i].Value,
		Notes:   strings.TrimSpace(m.notes.Value()),
	}
	return func() tea.Msg { return SubmitMsg{Input: input} }
}
