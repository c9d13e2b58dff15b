package capture

import (
	"strings"

	"github.com/tOgg1/canplay/internal/models"
)

const delimiter = ","

type column int

const (
	colTimestamp column = iota
	colInterface
	colID
	colData
	colCount
)

var headerAliases = map[string]column{
	"time":           colTimestamp,
	"timestamp":      colTimestamp,
	"interface":      colInterface,
	"iface":          colInterface,
	"channel":        colInterface,
	"bus":            colInterface,
	"id":             colID,
	"arbitration id": colID,
	"arbitrationid":  colID,
	"arbitration_id": colID,
	"can id":         colID,
	"canid":          colID,
	"data":           colData,
	"payload":        colData,
}

type delimitedParser struct {
	sawHeader bool
	// index[c] is the header position of canonical column c, or -1.
	index [colCount]int
}

func (p *delimitedParser) parseLine(line string, seq *models.Sequence) {
	if !p.sawHeader {
		p.sawHeader = true
		seq.Header = strings.Split(line, delimiter)
		p.mapHeader(seq.Header)
		return
	}
	if line == "" {
		seq.Skipped++
		return
	}

	width := len(seq.Header)
	cells := strings.Split(line, delimiter)
	fields := make([]models.Field, width)
	for i := 0; i < width && i < len(cells); i++ {
		fields[i] = models.Field{Value: cells[i], Set: true}
	}
	overflow := 0
	if len(cells) > width {
		overflow = len(cells) - width
	}

	frame := models.Frame{
		Index:    len(seq.Frames),
		Fields:   fields,
		Overflow: overflow,
	}
	frame.Timestamp = p.cell(fields, colTimestamp)
	frame.Interface = p.cell(fields, colInterface)
	frame.ArbitrationID = p.cell(fields, colID)
	frame.DataField = p.cell(fields, colData)
	seq.Frames = append(seq.Frames, frame)
}

func (p *delimitedParser) mapHeader(header []string) {
	for c := range p.index {
		p.index[c] = -1
	}
	for i, name := range header {
		c, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok || p.index[c] >= 0 {
			continue
		}
		p.index[c] = i
	}
}

func (p *delimitedParser) cell(fields []models.Field, c column) string {
	i := p.index[c]
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i].Value
}
