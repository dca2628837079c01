package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sleeptrack/internal/ui/theme"
)

// Command is one entry the palette can offer.
type Command struct {
	Name  string
	Usage string
}

var (
	CmdStart  = Command{Name: "night:start", Usage: "night:start"}
	CmdStop   = Command{Name: "night:stop", Usage: "night:stop"}
	CmdRate   = Command{Name: "night:rate", Usage: "night:rate <0-5> [notes]"}
	CmdClear  = Command{Name: "history:clear", Usage: "history:clear"}
	CmdExport = Command{Name: "history:export", Usage: "history:export [dir]"}
	CmdTheme  = Command{Name: "theme", Usage: "theme <mocha|latte>"}
)

// CommandMsg is emitted when the user runs a line from the palette. Args are
// the whitespace-separated fields after the command name.
type CommandMsg struct {
	Name string
	Args []string
}

// PaletteClosedMsg is emitted when the palette is dismissed without a command.
type PaletteClosedMsg struct{}

// ParseCommand splits a palette line into a command name and its arguments.
func ParseCommand(line string) (CommandMsg, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandMsg{}, false
	}
	return CommandMsg{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

// Palette is the ":" overlay. The caller decides which commands are offered
// each time it opens, so hidden actions never show up as hints.
type Palette struct {
	input    textinput.Model
	commands []Command
	visible  bool
	width    int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "tab completes"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette offering commands and returns the focus command.
func (p *Palette) Open(commands []Command) tea.Cmd {
	p.commands = commands
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

// Matches returns the offered commands whose name starts with the first word
// typed so far.
func (p Palette) Matches() []Command {
	typed := strings.ToLower(strings.TrimLeft(p.input.Value(), " "))
	if i := strings.IndexByte(typed, ' '); i >= 0 {
		typed = typed[:i]
	}
	var out []Command
	for _, c := range p.commands {
		if strings.HasPrefix(c.Name, typed) {
			out = append(out, c)
		}
	}
	return out
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return p.close(), func() tea.Msg { return PaletteClosedMsg{} }
		case "tab":
			if matches := p.Matches(); len(matches) > 0 && !strings.Contains(strings.TrimSpace(p.input.Value()), " ") {
				p.input.SetValue(matches[0].Name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		case "enter":
			line := p.input.Value()
			p = p.close()
			if cmd, ok := ParseCommand(line); ok {
				return p, func() tea.Msg { return cmd }
			}
			return p, func() tea.Msg { return PaletteClosedMsg{} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) close() Palette {
	p.visible = false
	p.input.Blur()
	return p
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(p.input.View() + "\n")
	matches := p.Matches()
	if len(matches) == 0 {
		sb.WriteString("\n" + theme.Muted.Render("  no matching command"))
	}
	for i, c := range matches {
		line := "  " + c.Usage
		if i == 0 {
			sb.WriteString("\n" + theme.Hot.Render(line))
			continue
		}
		sb.WriteString("\n" + theme.Muted.Render(line))
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Peach).
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(0, 1).
		Width(w - 2).
		Render(sb.String())
}
