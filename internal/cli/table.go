package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = "  "

// textTable is a left-aligned plain-text table for command output. Widths are
// measured in terminal cells, so styled cells line up with plain ones. Empty
// trailing cells are dropped so no line ends in padding.
type textTable struct {
	header []string
	rows   [][]string
}

func newTextTable(header ...string) *textTable {
	return &textTable{header: header}
}

func (t *textTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) len() int {
	return len(t.rows)
}

func (t *textTable) render(out io.Writer) error {
	widths := t.columnWidths()
	if len(widths) == 0 {
		return nil
	}

	var b strings.Builder
	if len(t.header) > 0 {
		writeLine(&b, t.header, widths)
	}
	for _, row := range t.rows {
		writeLine(&b, row, widths)
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func (t *textTable) columnWidths() []int {
	var widths []int
	measure := func(row []string) {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func writeLine(b *strings.Builder, row []string, widths []int) {
	row = trimEmptyTail(row)
	for i, cell := range row {
		if i > 0 {
			b.WriteString(columnGap)
		}
		b.WriteString(cell)
		if i < len(row)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
	}
	b.WriteByte('\n')
}

func trimEmptyTail(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}
