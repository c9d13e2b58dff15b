package capture

import (
	"regexp"

	"github.com/tOgg1/canplay/internal/models"
)

// candumpLine matches "(<ts>) <iface> <id>#<data>" anywhere in a line.
var candumpLine = regexp.MustCompile(`\(([^)]*)\)\s+(\S+)\s+([^\s#]+)#(\S*)`)

type candumpParser struct{}

func (candumpParser) parseLine(line string, seq *models.Sequence) {
	m := candumpLine.FindStringSubmatch(line)
	if m == nil {
		seq.Skipped++
		return
	}
	seq.Frames = append(seq.Frames, models.Frame{
		Index:         len(seq.Frames),
		Timestamp:     m[1],
		Interface:     m[2],
		ArbitrationID: m[3],
		DataField:     m[4],
	})
}
