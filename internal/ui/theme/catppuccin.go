package theme

import "github.com/charmbracelet/lipgloss"

type palette struct {
	base, mantle, surface0, surface1, text, subtext0 string
	lavender, sapphire, green, peach, red              string
}

var palettes = map[string]palette{
	"mocha": {
		base: "#1e1e2e", mantle: "#181825", surface0: "#313244", surface1: "#45475a",
		text: "#cdd6f4", subtext0: "#a6adc8", lavender: "#b4befe", sapphire: "#74c7ec",
		green: "#a6e3a1", peach: "#fab387", red: "#f38ba8",
	},
	"latte": {
		base: "#eff1f5", mantle: "#e6e9ef", surface0: "#ccd0da", surface1: "#bcc0cc",
		text: "#4c4f69", subtext0: "#6c6f85", lavender: "#7287fd", sapphire: "#209fb5",
		green: "#40a02b", peach: "#fe640b", red: "#d20f39",
	},
}

var (
	Base     lipgloss.Color
	Mantle   lipgloss.Color
	Surface0 lipgloss.Color
	Surface1 lipgloss.Color
	Text     lipgloss.Color
	Subtext0 lipgloss.Color
	Lavender lipgloss.Color
	Sapphire lipgloss.Color
	Green    lipgloss.Color
	Peach    lipgloss.Color
	Red      lipgloss.Color

	Pane       lipgloss.Style
	PaneActive lipgloss.Style
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Hot        lipgloss.Style
	Ok         lipgloss.Style
	Alert      lipgloss.Style
)

// Current is the flavour last applied.
var Current string

func init() {
	Apply("mocha")
}

// Names lists the flavours Apply accepts.
func Names() []string {
	return []string{"mocha", "latte"}
}

// Apply switches every exported colour and style to the named flavour.
// Unknown names fall back to mocha and report false.
func Apply(name string) bool {
	p, ok := palettes[name]
	if !ok {
		name, p = "mocha", palettes["mocha"]
	}
	Current = name

	Base = lipgloss.Color(p.base)
	Mantle = lipgloss.Color(p.mantle)
	Surface0 = lipgloss.Color(p.surface0)
	Surface1 = lipgloss.Color(p.surface1)
	Text = lipgloss.Color(p.text)
	Subtext0 = lipgloss.Color(p.subtext0)
	Lavender = lipgloss.Color(p.lavender)
	Sapphire = lipgloss.Color(p.sapphire)
	Green = lipgloss.Color(p.green)
	Peach = lipgloss.Color(p.peach)
	Red = lipgloss.Color(p.red)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)
	PaneActive = Pane.BorderForeground(Lavender)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Ok = lipgloss.NewStyle().Foreground(Green)
	Alert = lipgloss.NewStyle().Foreground(Red).Bold(true)
	return ok
}

// GlamourStyle names the glamour style that matches the current flavour.
func GlamourStyle() string {
	if Current == "latte" {
		return "light"
	}
	return "dark"
}
