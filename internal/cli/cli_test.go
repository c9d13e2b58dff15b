package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/canplay/internal/activity"
	"github.com/tOgg1/canplay/internal/catalog"
	"github.com/tOgg1/canplay/internal/config"
	"github.com/tOgg1/canplay/internal/models"
	"github.com/tOgg1/canplay/internal/session"
)

const (
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

func TestTextTableAlignsStyledCells(t *testing.T) {
	table := newTextTable("ID", "NAME", "DATA")
	table.add("7E0", "EngineData", "0102")
	table.add(ansiYellow+"18FEF100"+ansiReset, "", "05")

	var buf bytes.Buffer
	require.NoError(t, table.render(&buf))

	want := "" +
		"ID        NAME        DATA\n" +
		"7E0       EngineData  0102\n" +
		ansiYellow + "18FEF100" + ansiReset + "              05\n"
	require.Equal(t, want, buf.String())
}

func TestTextTableTrimsTrailingEmptyCells(t *testing.T) {
	table := newTextTable("ID", "DATA")
	table.add("7E0", "")
	table.add("7E8")

	var buf bytes.Buffer
	require.NoError(t, table.render(&buf))
	require.Equal(t, "ID   DATA\n7E0\n7E8\n", buf.String())
}

func TestTextTableEmptyRendersNothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTextTable().render(&buf))
	require.Empty(t, buf.String())
}

func TestFrameTableAddsNameColumnWithCatalog(t *testing.T) {
	b := catalog.NewBuilder()
	b.OnMessageDefinition(0x7E0, "EngineData", 8, -1)
	names := b.Catalog
	frame := models.Frame{Index: 0, Timestamp: "1.000", Interface: "can0", ArbitrationID: "7E0", DataField: "0102"}

	plain := newFrameTable(nil)
	plain.addFrame(frame)
	named := newFrameTable(names)
	named.addFrame(frame)

	var buf bytes.Buffer
	require.NoError(t, plain.render(&buf))
	require.NotContains(t, buf.String(), "NAME")

	buf.Reset()
	require.NoError(t, named.render(&buf))
	require.Contains(t, buf.String(), "NAME")
	require.Contains(t, buf.String(), "7E0  EngineData  0102")
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const (
	driveLog = "(1.000) can0 7E0#0102\n" +
		"garbage line\n" +
		"(1.010) can0 7E8#0304\n" +
		"(1.020) can0 18FEF100#05\n"

	engineDBC = "BU_: ECU GATEWAY\n\n" +
		"BO_ 2016 EngineData: 8 ECU\n\n" +
		"BO_ 2024 EngineReply: 8 GATEWAY\n\n" +
		"VAL_TABLE_ Gear 0 \"P\" 1 \"R\" 2 \"N\" 3 \"D\" ;\n"
)

func TestRunFramesListsFilteredFrames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runFrames(&buf, writeFile(t, "drive.log", driveLog), "", "7e", 0))

	out := buf.String()
	require.Contains(t, out, "7E0")
	require.Contains(t, out, "7E8")
	require.NotContains(t, out, "18FEF100")
	require.Contains(t, out, "2 of 3 frames (candump, 1 lines skipped)")
}

func TestRunFramesLimitAndNames(t *testing.T) {
	var buf bytes.Buffer
	capturePath := writeFile(t, "drive.log", driveLog)
	dbcPath := writeFile(t, "engine.dbc", engineDBC)
	require.NoError(t, runFrames(&buf, capturePath, dbcPath, "", 1))

	out := buf.String()
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "EngineData")
	require.NotContains(t, out, "EngineReply")
	require.Contains(t, out, "1 of 3 frames")
}

func TestRunFramesUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := runFrames(&buf, writeFile(t, "drive.bin", driveLog), "", "", 0)
	require.True(t, models.IsKind(err, models.KindUnsupportedFormat))
}

func TestRunCatalogPrintsMessagesAndTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runCatalog(&buf, writeFile(t, "engine.dbc", engineDBC)))

	out := buf.String()
	require.Contains(t, out, "0x7E0")
	require.Contains(t, out, "EngineData")
	require.Contains(t, out, "EngineReply")
	require.Contains(t, out, "Gear: 0=P 1=R 2=N 3=D")
	require.Contains(t, out, "2 messages, 1 value tables")
}

func TestRunCatalogPartialFailure(t *testing.T) {
	var buf bytes.Buffer
	text := "BO_ 100 EngineData: 8 Vector__XXX\n\nBO_ notanumber Broken: 8 Vector__XXX\n"
	err := runCatalog(&buf, writeFile(t, "broken.dbc", text))

	require.True(t, models.IsKind(err, models.KindDefinitionParseFailure))
	require.Contains(t, buf.String(), "EngineData")
}

func TestRunCatalogMissingFile(t *testing.T) {
	var buf bytes.Buffer
	err := runCatalog(&buf, filepath.Join(t.TempDir(), "missing.dbc"))
	require.True(t, models.IsKind(err, models.KindIOFailure))
	require.Empty(t, buf.String())
}


func TestRunPlayEmitsEveryFrame(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := runPlay(ctx, &buf, playOptions{
		Capture:     writeFile(t, "drive.log", driveLog),
		Definitions: writeFile(t, "engine.dbc", engineDBC),
		Config:      config.DefaultConfig(),
		tick:        time.Millisecond,
		decay:       time.Millisecond,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "7E0 EngineData")
	require.Contains(t, lines[1], "7E8 EngineReply")
	require.Contains(t, lines[2], "18FEF100")
	require.Equal(t, "3 of 3 frames, 3 identifiers", lines[3])
}

func TestRunPlayAppliesFilter(t *testing.T) {
	var buf bytes.Buffer
	err := runPlay(context.Background(), &buf, playOptions{
		Capture: writeFile(t, "drive.log", driveLog),
		Filter:  "fef",
		Config:  config.DefaultConfig(),
		tick:    time.Millisecond,
		decay:   time.Millisecond,
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "18FEF100")
	require.NotContains(t, buf.String(), "7E0")
	require.Contains(t, buf.String(), "1 of 3 frames")
}

func TestRunPlayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := runPlay(ctx, &buf, playOptions{
		Capture: writeFile(t, "drive.log", driveLog),
		Config:  config.DefaultConfig(),
		tick:    time.Hour,
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunPlayMissingCapture(t *testing.T) {
	var buf bytes.Buffer
	err := runPlay(context.Background(), &buf, playOptions{
		Capture: filepath.Join(t.TempDir(), "missing.log"),
		Config:  config.DefaultConfig(),
	})
	require.True(t, models.IsKind(err, models.KindIOFailure))
}

func TestSessionOptionsUseFixedTiming(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Playback.InitialSpeed = 4

	opts := sessionOptions(cfg)
	require.Zero(t, opts.BaseInterval)
	require.Zero(t, opts.DecayDelay)

	snap := session.New(opts).Snapshot()
	require.Equal(t, 4, snap.Speed)
	require.Equal(t, 25.0, snap.IntervalMs())
}

func TestDecayQueuePopsInOrder(t *testing.T) {
	base := time.Unix(1700000000, 0)
	q := &decayQueue{}
	q.push(base.Add(10*time.Millisecond), activity.Decay{ID: "7E0"})
	q.push(base.Add(20*time.Millisecond), activity.Decay{ID: "7E8"})

	due, ok := q.peek()
	require.True(t, ok)
	require.Equal(t, base.Add(10*time.Millisecond), due)

	require.Empty(t, q.popDue(base))
	got := q.popDue(base.Add(15 * time.Millisecond))
	require.Equal(t, []activity.Decay{{ID: "7E0"}}, got)
	got = q.popDue(base.Add(time.Second))
	require.Equal(t, []activity.Decay{{ID: "7E8"}}, got)

	_, ok = q.peek()
	require.False(t, ok)
}

func TestPreflightErrorIncludesHint(t *testing.T) {
	err := &PreflightError{Message: "TUI requires an interactive terminal", Hint: "use a TTY", NextStep: "canplay play x.log"}
	require.Contains(t, err.Error(), "hint: use a TTY")
	require.Contains(t, err.Error(), "canplay play x.log")
}
