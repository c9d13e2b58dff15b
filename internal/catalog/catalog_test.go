package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/canplay/internal/logging"
	"github.com/tOgg1/canplay/internal/models"
)

// scriptedParser replays a fixed list of callbacks, then fails if failAfter is set.
type scriptedParser struct {
	steps     []func(Handler)
	failAfter bool
}

func (s scriptedParser) Parse(_ string, _ []byte, h Handler) error {
	for _, step := range s.steps {
		step(h)
	}
	if s.failAfter {
		return errors.New("unexpected token")
	}
	return nil
}

func TestBuilderAccumulates(t *testing.T) {
	b := NewBuilder()
	b.OnMessageDefinition(100, "EngineData", 8, 0)
	b.OnValueTableDefinition("Gear", []ValueDescription{{Value: 0, Label: "P"}, {Value: 1, Label: "R"}})

	name, ok := b.Catalog.Lookup(100)
	require.True(t, ok)
	require.Equal(t, "EngineData", name)

	_, ok = b.Catalog.Lookup(101)
	require.False(t, ok)

	label, ok := b.ValueTables.Label("Gear", 1)
	require.True(t, ok)
	require.Equal(t, "R", label)
	require.Equal(t, []string{"Gear"}, b.ValueTables.Names())
}

func TestParseWithFailureKeepsEarlierCallbacks(t *testing.T) {
	parser := scriptedParser{
		steps: []func(Handler){
			func(h Handler) { h.OnMessageDefinition(100, "EngineData", 8, -1) },
			func(h Handler) { h.OnValueTableDefinition("Gear", []ValueDescription{{Value: 2, Label: "N"}}) },
		},
		failAfter: true,
	}

	c, v, err := ParseWith(parser, "broken.dbc", nil)
	require.Error(t, err)
	require.True(t, models.IsKind(err, models.KindDefinitionParseFailure))

	name, ok := c.Lookup(100)
	require.True(t, ok)
	require.Equal(t, "EngineData", name)
	_, ok = v.Get("Gear")
	require.True(t, ok)
}

func TestLookupHex(t *testing.T) {
	b := NewBuilder()
	b.OnMessageDefinition(0x7E0, "EngineData", 8, -1)
	b.OnMessageDefinition(0x18FEF100|extendedFlag, "CruiseControl", 8, -1)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "7E0", want: "EngineData", ok: true},
		{in: "7e0", want: "EngineData", ok: true},
		{in: "0x7E0", want: "EngineData", ok: true},
		{in: "18FEF100", want: "CruiseControl", ok: true},
		{in: "7E8", ok: false},
		{in: "zz", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := b.Catalog.LookupHex(tt.in)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMessagesSortedByID(t *testing.T) {
	b := NewBuilder()
	b.OnMessageDefinition(300, "C", 1, -1)
	b.OnMessageDefinition(100, "A", 1, -1)
	b.OnMessageDefinition(200, "B", 1, -1)

	var names []string
	for _, msg := range b.Catalog.Messages() {
		names = append(names, msg.Name)
	}
	require.Equal(t, []string{"A", "B", "C"}, names)
}

func TestNilCatalogLookups(t *testing.T) {
	var c *Catalog
	_, ok := c.Lookup(1)
	require.False(t, ok)
	_, ok = c.LookupHex("1")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestDBCParserSingleMessage(t *testing.T) {
	c, _, ok := Parse([]byte("BU_: ECU Gateway\n\nBO_ 100 EngineData: 8 Gateway\n"))
	require.True(t, ok)

	name, found := c.Lookup(100)
	require.True(t, found)
	require.Equal(t, "EngineData", name)
	require.Equal(t, 1, c.Messages()[0].Transmitter)
}

func TestDBCParserValueTable(t *testing.T) {
	_, v, ok := Parse([]byte("VAL_TABLE_ Gear 0 \"P\" 1 \"R\" 2 \"N\" 3 \"D\" ;\n"))
	require.True(t, ok)

	entries, found := v.Get("Gear")
	require.True(t, found)
	require.Len(t, entries, 4)
	require.Equal(t, ValueDescription{Value: 3, Label: "D"}, entries[3])
}

func TestDBCParserFailurePartway(t *testing.T) {
	text := "BO_ 100 EngineData: 8 Vector__XXX\n\n" +
		"VAL_TABLE_ Gear 0 \"P\" 1 \"R\" ;\n\n" +
		"BO_ notanumber Broken: 8 Vector__XXX\n"

	c, v, ok := Parse([]byte(text))
	require.False(t, ok)

	name, found := c.Lookup(100)
	require.True(t, found)
	require.Equal(t, "EngineData", name)
	_, found = v.Get("Gear")
	require.True(t, found)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicle.dbc")
	require.NoError(t, os.WriteFile(path, []byte("BO_ 2024 Brake: 4 Vector__XXX\n"), 0o644))

	c, _, err := ParseFile(path)
	require.NoError(t, err)
	name, ok := c.LookupHex("7E8")
	require.True(t, ok)
	require.Equal(t, "Brake", name)

	_, _, err = ParseFile(filepath.Join(t.TempDir(), "missing.dbc"))
	require.True(t, models.IsKind(err, models.KindIOFailure))
}

func TestParseWithLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	_, _, err := ParseWith(scriptedParser{failAfter: true}, "broken.dbc", nil)
	require.Error(t, err)
	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Contains(t, buf.String(), `"component":"catalog"`)

	buf.Reset()
	_, _, err = ParseWith(scriptedParser{}, "engine.dbc", nil)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"message":"definitions loaded"`)
}
