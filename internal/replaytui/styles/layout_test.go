package styles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeColumnWidths(t *testing.T) {
	widths := ComputeColumnWidths(160, 8)
	require.Equal(t, 8*IndicatorWidth+panelChrome, widths.Grid)
	require.Equal(t, 160-widths.Grid-LayoutGap, widths.Table)

	// Too narrow for both panes: the table takes everything.
	require.Equal(t, ColumnWidths{Table: 100}, ComputeColumnWidths(100, 8))
	require.Equal(t, ColumnWidths{}, ComputeColumnWidths(0, 8))
}

func TestThemesRegistered(t *testing.T) {
	for _, name := range []string{"default", "high-contrast"} {
		theme, ok := Lookup(name)
		require.True(t, ok, name)
		require.Equal(t, name, theme.Name)
	}
	_, ok := Lookup("matrix")
	require.False(t, ok)
}
