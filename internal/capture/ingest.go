// Package capture turns captured bus-traffic text into an ordered frame sequence.
package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tOgg1/canplay/internal/logging"
	"github.com/tOgg1/canplay/internal/models"
)

// maxLineSize bounds a single capture line.
const maxLineSize = 1 << 20

var suffixFormats = map[string]models.Format{
	".log": models.FormatCandump,
	".csv": models.FormatDelimited,
}

// FormatFromPath derives the capture format from the file suffix, ignoring case.
func FormatFromPath(path string) (models.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if format, ok := suffixFormats[ext]; ok {
		return format, nil
	}
	return models.FormatUnknown, models.NewError(models.KindUnsupportedFormat, path, fmt.Errorf("suffix %q", ext))
}

// LoadFile reads and ingests the capture at path. The format is resolved before
// the file is opened, so an unsupported suffix never touches the filesystem.
func LoadFile(path string) (*models.Sequence, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewError(models.KindIOFailure, path, err)
	}
	defer f.Close()

	seq, err := Ingest(f, format)
	if err != nil {
		return nil, models.NewError(models.KindIOFailure, path, err)
	}
	seq.Source = path

	log := logging.Component("capture")
	log.Info().
		Str("path", path).
		Str("format", format.String()).
		Int("frames", seq.Len()).
		Int("skipped", seq.Skipped).
		Msg("capture ingested")
	return seq, nil
}

// Ingest parses r in the given format. Lines are read synchronously; the only
// error returned is a read failure from r.
func Ingest(r io.Reader, format models.Format) (*models.Sequence, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var p lineParser
	switch format {
	case models.FormatCandump:
		p = &candumpParser{}
	case models.FormatDelimited:
		p = &delimitedParser{}
	default:
		return nil, models.NewError(models.KindUnsupportedFormat, "", fmt.Errorf("format %s", format))
	}

	seq := &models.Sequence{Format: format, Frames: []models.Frame{}}
	for scanner.Scan() {
		p.parseLine(scanner.Text(), seq)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	return seq, nil
}

// IngestText is Ingest over an in-memory string.
func IngestText(raw string, format models.Format) (*models.Sequence, error) {
	return Ingest(strings.NewReader(raw), format)
}

type lineParser interface {
	parseLine(line string, seq *models.Sequence)
}
