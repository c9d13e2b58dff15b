package catalog

import (
	"fmt"
	"os"

	"go.einride.tech/can/pkg/dbc"

	"github.com/tOgg1/canplay/internal/logging"
	"github.com/tOgg1/canplay/internal/models"
)

// Parser lexes and parses definition text, driving h as definitions are read.
// On failure every definition read before the failing point has already been
// delivered to h.
type Parser interface {
	Parse(name string, text []byte, h Handler) error
}

// DBCParser is the Parser backed by go.einride.tech/can/pkg/dbc.
type DBCParser struct{}

// Parse implements Parser.
func (DBCParser) Parse(name string, text []byte, h Handler) error {
	p := dbc.NewParser(name, text)
	parseErr := p.Parse()

	var nodes []string
	for _, def := range p.Defs() {
		switch d := def.(type) {
		case *dbc.NodesDef:
			for _, n := range d.NodeNames {
				nodes = append(nodes, string(n))
			}
		case *dbc.MessageDef:
			h.OnMessageDefinition(uint32(d.MessageID), string(d.Name), d.Size, nodeOrdinal(nodes, string(d.Transmitter)))
		case *dbc.ValueTableDef:
			entries := make([]ValueDescription, 0, len(d.ValueDescriptions))
			for _, vd := range d.ValueDescriptions {
				entries = append(entries, ValueDescription{Value: uint32(vd.Value), Label: vd.Description})
			}
			h.OnValueTableDefinition(string(d.TableName), entries)
		}
	}

	if parseErr != nil {
		return parseErr
	}
	return nil
}

func nodeOrdinal(nodes []string, name string) int {
	for i, n := range nodes {
		if n == name {
			return i
		}
	}
	return -1
}

// DefaultParser is used by Parse and ParseFile.
var DefaultParser Parser = DBCParser{}

// Parse runs DefaultParser over text into a fresh catalog and registry. ok is
// false on parse failure; the returned results still hold everything
// delivered before the failure.
func Parse(text []byte) (*Catalog, *ValueTables, bool) {
	c, v, err := ParseWith(DefaultParser, "", text)
	return c, v, err == nil
}

// ParseWith runs parser over text. A parse failure is reported as
// KindDefinitionParseFailure alongside the partial results.
func ParseWith(parser Parser, name string, text []byte) (*Catalog, *ValueTables, error) {
	log := logging.Component("catalog")
	b := NewBuilder()
	if err := parser.Parse(name, text, b); err != nil {
		log.Warn().
			Err(err).
			Str("path", name).
			Int("messages", b.Catalog.Len()).
			Int("value_tables", b.ValueTables.Len()).
			Msg("definition parse failed; keeping partial catalog")
		return b.Catalog, b.ValueTables, models.NewError(models.KindDefinitionParseFailure, name, err)
	}
	log.Info().
		Str("path", name).
		Int("messages", b.Catalog.Len()).
		Int("value_tables", b.ValueTables.Len()).
		Msg("definitions loaded")
	return b.Catalog, b.ValueTables, nil
}

// ParseFile reads and parses the definition file at path. An unreadable file
// is KindIOFailure and yields no results.
func ParseFile(path string) (*Catalog, *ValueTables, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, models.NewError(models.KindIOFailure, path, fmt.Errorf("read definitions: %w", err))
	}
	return ParseWith(DefaultParser, path, text)
}
