package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// ActivityColors defines colors for grid indicators.
type ActivityColors struct {
	Active     string
	ActiveText string
	Idle       string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header        string
	Footer        string
	SelectedRow   string
	Progress      string
	ProgressEmpty string
	Error         string
}

// BorderColors defines border colors for pane state.
type BorderColors struct {
	ActivePane   string
	InactivePane string
	Divider      string
}

// Theme defines the replay TUI style tokens.
type Theme struct {
	Name        string
	BorderStyle string // "rounded", "sharp", "double", "hidden"

	Base     BaseColors
	Activity ActivityColors
	Chrome   ChromeColors
	Borders  BorderColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// Lookup returns the named theme.
func Lookup(name string) (Theme, bool) {
	t, ok := Themes[name]
	return t, ok
}

// HeaderStyle renders the title bar.
func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Chrome.Header))
}

// FooterStyle renders the status and help lines.
func (t Theme) FooterStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Footer))
}

// MutedStyle renders secondary text.
func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Muted))
}

// AccentStyle renders highlighted text such as message names.
func (t Theme) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Accent))
}

// ErrorStyle renders failures in the status line.
func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Error))
}

// SelectedRowStyle marks the most recently emitted frame.
func (t Theme) SelectedRowStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Chrome.SelectedRow))
}

// IndicatorStyle renders one activity grid cell.
func (t Theme) IndicatorStyle(active bool) lipgloss.Style {
	if active {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Activity.ActiveText)).
			Background(lipgloss.Color(t.Activity.Active))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Activity.Idle))
}

// ProgressStyle renders the filled or empty part of the progress bar.
func (t Theme) ProgressStyle(filled bool) lipgloss.Style {
	if filled {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Progress))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.ProgressEmpty))
}
