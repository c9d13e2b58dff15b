// Package catalog accumulates message names and value tables delivered by a
// definition-file parser.
package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// extendedFlag is the bit DBC files set on 29-bit message IDs.
const extendedFlag = 0x80000000

// ValueDescription is one raw value and its label inside a value table.
type ValueDescription struct {
	Value uint32
	Label string
}

// Message is one catalog entry.
type Message struct {
	ID          uint32
	Name        string
	Size        uint64
	Transmitter int
}

// Handler receives definitions as the parser produces them.
type Handler interface {
	OnMessageDefinition(id uint32, name string, size uint64, transmitter int)
	OnValueTableDefinition(table string, entries []ValueDescription)
}

// Catalog maps message IDs to names.
type Catalog struct {
	messages map[uint32]Message
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{messages: make(map[uint32]Message)}
}

// Lookup returns the name registered for id.
func (c *Catalog) Lookup(id uint32) (string, bool) {
	if c == nil {
		return "", false
	}
	msg, ok := c.messages[id]
	if !ok {
		return "", false
	}
	return msg.Name, true
}

// LookupHex resolves a capture arbitration ID written in hex, such as "7E0" or
// "18FEF100". Extended IDs also match entries stored with the DBC extended flag.
func (c *Catalog) LookupHex(arbID string) (string, bool) {
	if c == nil {
		return "", false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(arbID)), "0x"), 16, 32)
	if err != nil {
		return "", false
	}
	if name, ok := c.Lookup(uint32(id)); ok {
		return name, true
	}
	return c.Lookup(uint32(id) | extendedFlag)
}

// Messages returns every entry ordered by ID.
func (c *Catalog) Messages() []Message {
	if c == nil {
		return nil
	}
	out := make([]Message, 0, len(c.messages))
	for _, msg := range c.messages {
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.messages)
}

// ValueTables is the registry of named value tables.
type ValueTables struct {
	tables map[string][]ValueDescription
	order  []string
}

// NewValueTables creates an empty registry.
func NewValueTables() *ValueTables {
	return &ValueTables{tables: make(map[string][]ValueDescription)}
}

// Get returns the entries of a table in definition order.
func (v *ValueTables) Get(name string) ([]ValueDescription, bool) {
	if v == nil {
		return nil, false
	}
	entries, ok := v.tables[name]
	return entries, ok
}

// Label resolves a raw value inside table.
func (v *ValueTables) Label(table string, raw uint32) (string, bool) {
	entries, ok := v.Get(table)
	if !ok {
		return "", false
	}
	for _, e := range entries {
		if e.Value == raw {
			return e.Label, true
		}
	}
	return "", false
}

// Names returns table names in first-definition order.
func (v *ValueTables) Names() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.order...)
}

// Len returns the number of tables.
func (v *ValueTables) Len() int {
	if v == nil {
		return 0
	}
	return len(v.tables)
}

// Builder is the Handler that fills a Catalog and a ValueTables registry.
// Every callback applies immediately; nothing is rolled back.
type Builder struct {
	Catalog     *Catalog
	ValueTables *ValueTables
}

// NewBuilder creates a builder over empty results.
func NewBuilder() *Builder {
	return &Builder{
		Catalog:     NewCatalog(),
		ValueTables: NewValueTables(),
	}
}

// OnMessageDefinition records id -> name. A later definition for the same id wins.
func (b *Builder) OnMessageDefinition(id uint32, name string, size uint64, transmitter int) {
	b.Catalog.messages[id] = Message{ID: id, Name: name, Size: size, Transmitter: transmitter}
}

// OnValueTableDefinition records a table. A later definition for the same name wins.
func (b *Builder) OnValueTableDefinition(table string, entries []ValueDescription) {
	if _, exists := b.ValueTables.tables[table]; !exists {
		b.ValueTables.order = append(b.ValueTables.order, table)
	}
	b.ValueTables.tables[table] = append([]ValueDescription(nil), entries...)
}
