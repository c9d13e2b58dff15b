package replaytui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tOgg1/canplay/internal/activity"
	"github.com/tOgg1/canplay/internal/models"
	"github.com/tOgg1/canplay/internal/playback"
	"github.com/tOgg1/canplay/internal/replaytui/styles"
)

const (
	minDataWidth   = 8
	nameWidth      = 18
	minProgressBar = 10
)

type column struct {
	title string
	width int
}

func (m *Model) View() string {
	header := m.renderHeader()
	progress := m.renderProgress(m.session.Snapshot(), m.width)
	footer := m.renderFooter()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(progress) - lipgloss.Height(footer)
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	body := m.renderBody(m.width, bodyHeight)
	return lipgloss.JoinVertical(lipgloss.Left, header, progress, body, footer)
}

func (m *Model) renderHeader() string {
	source := "no capture"
	if seq := m.session.Sequence(); seq != nil && seq.Source != "" {
		source = seq.Source
	}
	parts := []string{m.theme.HeaderStyle().Render("canplay"), source}
	if defs := m.session.DefinitionsPath(); defs != "" {
		parts = append(parts, m.theme.MutedStyle().Render("dbc "+defs))
	}
	if q := m.session.Query(); q != "" {
		parts = append(parts, m.theme.AccentStyle().Render("filter "+q))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderProgress(snap playback.Snapshot, width int) string {
	label := fmt.Sprintf(" %3d%%  %d/%d  x%d  %s", snap.Percent, snap.Position, snap.Total, snap.Speed, snap.State)
	barWidth := width - runewidth.StringWidth(label) - 2
	if barWidth < minProgressBar {
		barWidth = minProgressBar
	}
	filled := barWidth * snap.Percent / 100
	bar := m.theme.ProgressStyle(true).Render(strings.Repeat("█", filled)) +
		m.theme.ProgressStyle(false).Render(strings.Repeat("░", barWidth-filled))
	return "[" + bar + "]" + label
}

func (m *Model) renderFooter() string {
	lines := make([]string, 0, 3)
	if m.prompt != promptNone {
		lines = append(lines, m.input.View())
	}
	if m.status != "" {
		style := m.theme.FooterStyle()
		if m.statusError {
			style = m.theme.ErrorStyle()
		}
		lines = append(lines, style.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(width, height int) string {
	widths := styles.ComputeColumnWidths(width, m.session.GridColumns())
	// Panel borders take two lines and two columns.
	inner := height - 2

	table := styles.PanelStyle(m.theme, true).
		Width(max(widths.Table-2, 0)).
		Render(m.renderTable(max(widths.Table-2, 0), inner))
	if widths.Grid == 0 {
		return table
	}
	grid := styles.PanelStyle(m.theme, false).
		Width(widths.Grid - 2).
		Render(m.renderGrid(inner))
	return lipgloss.JoinHorizontal(lipgloss.Top, table, strings.Repeat(" ", styles.LayoutGap), grid)
}

func (m *Model) tableColumns(width int) []column {
	cols := []column{{title: "#", width: 6}}
	if m.showTimestamps {
		cols = append(cols, column{title: "TIME", width: 18})
	}
	cols = append(cols, column{title: "IFACE", width: 6}, column{title: "ID", width: 9})
	if m.session.Catalog().Len() > 0 {
		cols = append(cols, column{title: "NAME", width: nameWidth})
	}

	used := 0
	for _, c := range cols {
		used += c.width + 1
	}
	data := width - used
	if data < minDataWidth {
		data = minDataWidth
	}
	return append(cols, column{title: "DATA", width: data})
}

func (m *Model) frameCells(f models.Frame) []string {
	cells := []string{fmt.Sprintf("%d", f.Index)}
	if m.showTimestamps {
		cells = append(cells, f.Timestamp)
	}
	cells = append(cells, f.Interface, f.ArbitrationID)
	if m.session.Catalog().Len() > 0 {
		cells = append(cells, m.session.MessageName(f.ArbitrationID))
	}
	return append(cells, f.DataField)
}

func renderRow(cols []column, cells []string) string {
	var b strings.Builder
	for i, c := range cols {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(runewidth.FillRight(runewidth.Truncate(cell, c.width, "…"), c.width))
		if i < len(cols)-1 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func (m *Model) renderTable(width, height int) string {
	seq := m.session.Sequence()
	if seq.Len() == 0 {
		if seq == nil {
			return m.theme.MutedStyle().Render("no capture loaded, press o to open one")
		}
		return m.theme.MutedStyle().Render("capture has no frames")
	}

	cols := m.tableColumns(width)
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	lines := []string{m.theme.MutedStyle().Render(renderRow(cols, titles))}

	rows := visibleRows(m.session.Visibility())
	if len(rows) == 0 {
		lines = append(lines, m.theme.MutedStyle().Render("no frames match the filter"))
		return strings.Join(lines, "\n")
	}

	page := height - 1
	if page < 1 {
		page = 1
	}
	start := windowStart(rows, m.lastEmitted, page)
	end := min(start+page, len(rows))
	for _, idx := range rows[start:end] {
		line := renderRow(cols, m.frameCells(seq.At(idx)))
		if idx == m.lastEmitted {
			line = m.theme.SelectedRowStyle().Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func visibleRows(visible []bool) []int {
	rows := make([]int, 0, len(visible))
	for i, v := range visible {
		if v {
			rows = append(rows, i)
		}
	}
	return rows
}

// windowStart keeps the most recently emitted frame in the middle of the page.
func windowStart(rows []int, current, page int) int {
	if len(rows) <= page || current < 0 {
		return 0
	}
	pos := 0
	for pos < len(rows) && rows[pos] < current {
		pos++
	}
	start := pos - page/2
	if start < 0 {
		start = 0
	}
	if start > len(rows)-page {
		start = len(rows) - page
	}
	return start
}

func (m *Model) renderGrid(height int) string {
	indicators := m.session.Indicators()
	if len(indicators) == 0 {
		return m.theme.MutedStyle().Render("no activity")
	}
	visible := m.session.GridVisibility()
	cellText := styles.IndicatorWidth - 2

	var rows []string
	var row strings.Builder
	for i, ind := range indicators {
		if ind.Slot.Col == 0 && i > 0 {
			rows = append(rows, row.String())
			row.Reset()
		}
		if !visible[i] {
			row.WriteString(strings.Repeat(" ", styles.IndicatorWidth))
			continue
		}
		label := runewidth.FillRight(runewidth.Truncate(ind.ID, cellText, ""), cellText)
		cell := m.theme.IndicatorStyle(ind.Phase == activity.PhaseActive).Render(" " + label + " ")
		row.WriteString(cell)
	}
	rows = append(rows, row.String())

	if height > 0 && len(rows) > height {
		rows = rows[:height]
	}
	return strings.Join(rows, "\n")
}
