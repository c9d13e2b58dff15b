package models

// Format identifies the layout of a capture file.
type Format int

const (
	// FormatUnknown is the zero value and never produced by a successful ingest.
	FormatUnknown Format = iota

	// FormatCandump is the line-oriented "(ts) iface id#data" layout.
	FormatCandump

	// FormatDelimited is a header line followed by comma-separated rows.
	FormatDelimited
)

func (f Format) String() string {
	switch f {
	case FormatCandump:
		return "candump"
	case FormatDelimited:
		return "delimited"
	default:
		return "unknown"
	}
}

// Field is one cell of a delimited row. Set is false when the row ended
// before reaching this column.
type Field struct {
	Value string
	Set   bool
}

// Frame is one captured bus message. Frames are never mutated after ingest.
type Frame struct {
	// Index is the ordinal position within the owning sequence.
	Index int

	Timestamp     string
	Interface     string
	ArbitrationID string
	DataField     string

	// Fields holds the raw cells for delimited captures, one per header column.
	Fields []Field

	// Overflow counts trailing cells dropped because the row was wider than the header.
	Overflow int
}

// FieldValue returns the cell at column i and whether it was present in the row.
func (f Frame) FieldValue(i int) (string, bool) {
	if i < 0 || i >= len(f.Fields) {
		return "", false
	}
	return f.Fields[i].Value, f.Fields[i].Set
}

// Sequence is the ordered, file-order list of frames from one capture.
// A new load replaces the whole sequence.
type Sequence struct {
	Format Format

	// Source is the path the sequence was read from, if any.
	Source string

	// Header holds the column names for delimited captures.
	Header []string

	Frames []Frame

	// Skipped counts lines that did not match the candump grammar.
	Skipped int
}

// Len returns the number of frames.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// At returns the frame at position i.
func (s *Sequence) At(i int) Frame {
	return s.Frames[i]
}

// IDs returns the arbitration IDs of every frame, in order.
func (s *Sequence) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.Frames))
	for i := range s.Frames {
		ids[i] = s.Frames[i].ArbitrationID
	}
	return ids
}
