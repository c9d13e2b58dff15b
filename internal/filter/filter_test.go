package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/canplay/internal/models"
)

func frames(ids ...string) []models.Frame {
	out := make([]models.Frame, len(ids))
	for i, id := range ids {
		out[i] = models.Frame{Index: i, ArbitrationID: id}
	}
	return out
}

func TestVisibility(t *testing.T) {
	seq := frames("7E0", "7e8", "100", "17E0")

	tests := []struct {
		name  string
		query string
		want  []bool
	}{
		{name: "empty query shows all", query: "", want: []bool{true, true, true, true}},
		{name: "case insensitive substring", query: "7e", want: []bool{true, true, false, true}},
		{name: "upper query matches lower id", query: "E8", want: []bool{false, true, false, false}},
		{name: "no match", query: "FFF", want: []bool{false, false, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Visibility(seq, tt.query))
		})
	}
}

func TestVisibilityEmptyQueryAfterNarrowing(t *testing.T) {
	seq := frames("7E0", "100")
	require.Equal(t, []bool{false, true}, Visibility(seq, "10"))
	require.Equal(t, []bool{true, true}, Visibility(seq, ""))
}

func TestVisibleIDsAgreesWithVisibility(t *testing.T) {
	ids := []string{"7E0", "7E8", "100"}
	require.Equal(t, Visibility(frames(ids...), "e"), VisibleIDs(ids, "e"))
	require.Equal(t, 2, Count(VisibleIDs(ids, "e")))
}

func TestVisibilityEmptySequence(t *testing.T) {
	require.Empty(t, Visibility(nil, "7E0"))
}
