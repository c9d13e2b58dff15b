package styles

import "github.com/charmbracelet/lipgloss"

const (
	// LayoutGap is the default space between columns.
	LayoutGap = 2

	// LayoutInnerPadding is the default panel content padding.
	LayoutInnerPadding = 0

	// IndicatorWidth is the width of one activity grid cell, brackets included.
	IndicatorWidth = 10
)

const (
	minTableWidth = 40
	// panel border on both sides
	panelChrome = 2
)

// ColumnWidths defines the split between the frame table and the activity grid.
type ColumnWidths struct {
	Table int
	Grid  int
}

// ComputeColumnWidths gives the grid room for gridColumns cells and the table
// the rest. When the table would drop below its minimum the grid is hidden.
func ComputeColumnWidths(totalWidth, gridColumns int) ColumnWidths {
	if totalWidth <= 0 {
		return ColumnWidths{}
	}
	grid := gridColumns*IndicatorWidth + panelChrome
	table := totalWidth - grid - LayoutGap
	if table < minTableWidth {
		return ColumnWidths{Table: totalWidth}
	}
	return ColumnWidths{Table: table, Grid: grid}
}

// PanelStyle returns a focused/unfocused border style for panes.
func PanelStyle(theme Theme, focused bool) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(panelBorderStyle(theme)).
		BorderForeground(lipgloss.Color(panelBorderColor(theme, focused))).
		Padding(LayoutInnerPadding)
}

// DividerStyle returns the divider style between sections.
func DividerStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Borders.Divider))
}

func panelBorderColor(theme Theme, focused bool) string {
	if focused {
		return theme.Borders.ActivePane
	}
	return theme.Borders.InactivePane
}

func panelBorderStyle(theme Theme) lipgloss.Border {
	switch theme.BorderStyle {
	case "double":
		return lipgloss.DoubleBorder()
	case "sharp":
		return lipgloss.NormalBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}
