package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/canplay/internal/activity"
	"github.com/tOgg1/canplay/internal/catalog"
	"github.com/tOgg1/canplay/internal/events"
	"github.com/tOgg1/canplay/internal/models"
	"github.com/tOgg1/canplay/internal/playback"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type deferredDecay struct {
	delay time.Duration
	decay activity.Decay
}

type recordingDeferrer struct {
	pending []deferredDecay
}

func (r *recordingDeferrer) Defer(delay time.Duration, d activity.Decay) {
	r.pending = append(r.pending, deferredDecay{delay: delay, decay: d})
}

type testSession struct {
	*Session
	clock    *fakeClock
	deferrer *recordingDeferrer
	events   []models.EventType
}

func newTestSession(t *testing.T, opts Options) *testSession {
	t.Helper()
	ts := &testSession{
		clock:    &fakeClock{t: time.Unix(1700000000, 0)},
		deferrer: &recordingDeferrer{},
	}
	opts.Now = ts.clock.Now
	opts.Deferrer = ts.deferrer
	ts.Session = New(opts)
	require.NoError(t, ts.Publisher().Subscribe("test", events.Filter{}, func(e *models.Event) {
		ts.events = append(ts.events, e.Type)
	}))
	return ts
}

// step moves the clock past the debounce window so the next control action is accepted.
func (ts *testSession) step() {
	ts.clock.Advance(playback.DefaultDebounceWindow)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const threeFrames = "(1.0) can0 7E0#01\n(1.1) can0 7E8#02\n(1.2) can0 7E0#03\n"

func TestLoadCaptureInstallsSequence(t *testing.T) {
	s := newTestSession(t, Options{})
	path := writeFile(t, "drive.log", threeFrames)

	snap, accepted, err := s.LoadCapture(path)
	require.NoError(t, err)
	require.True(t, accepted)
	require.Equal(t, 3, snap.Total)
	require.Equal(t, playback.StateIdle, snap.State)
	require.Equal(t, path, s.Sequence().Source)
	require.Equal(t, []bool{true, true, true}, s.Visibility())
	require.Equal(t, []models.EventType{models.EventTypeCaptureLoaded, models.EventTypePlaybackChanged}, s.events)
}

func TestLoadCaptureFailureKeepsPreviousCapture(t *testing.T) {
	s := newTestSession(t, Options{})
	path := writeFile(t, "drive.log", threeFrames)
	_, _, err := s.LoadCapture(path)
	require.NoError(t, err)

	s.step()
	_, accepted, err := s.LoadCapture(filepath.Join(t.TempDir(), "missing.log"))
	require.True(t, accepted)
	require.True(t, models.IsKind(err, models.KindIOFailure))
	require.Equal(t, 3, s.Sequence().Len())

	s.step()
	_, _, err = s.LoadCapture(filepath.Join(t.TempDir(), "trace.bin"))
	require.True(t, models.IsKind(err, models.KindUnsupportedFormat))
	require.Equal(t, path, s.Sequence().Source)
}

func TestControlsAreDebounced(t *testing.T) {
	s := newTestSession(t, Options{})
	s.Install(&models.Sequence{Frames: []models.Frame{{ArbitrationID: "7E0"}}})

	snap, accepted := s.Toggle()
	require.True(t, accepted)
	require.True(t, snap.Running)

	// Every surface shares one window.
	s.clock.Advance(100 * time.Millisecond)
	_, accepted = s.Toggle()
	require.False(t, accepted)
	_, accepted = s.SetSpeed()
	require.False(t, accepted)
	_, accepted = s.SubmitFilter("7e")
	require.False(t, accepted)
	require.Equal(t, "", s.Query())
	require.Equal(t, 1, s.Snapshot().Speed)

	s.clock.Advance(200 * time.Millisecond)
	snap, accepted = s.Toggle()
	require.True(t, accepted)
	require.Equal(t, playback.StatePaused, snap.State)
}

func TestDebouncedLoadDoesNotReadFile(t *testing.T) {
	reads := 0
	s := newTestSession(t, Options{
		LoadFile: func(path string) (*models.Sequence, error) {
			reads++
			return &models.Sequence{Source: path}, nil
		},
	})

	_, accepted, err := s.LoadCapture("a.log")
	require.NoError(t, err)
	require.True(t, accepted)

	_, accepted, err = s.LoadCapture("b.log")
	require.NoError(t, err)
	require.False(t, accepted)
	require.Equal(t, 1, reads)
	require.Equal(t, "a.log", s.Sequence().Source)
}

func TestTickEmitsFramesAndActivatesIndicators(t *testing.T) {
	s := newTestSession(t, Options{})
	s.Install(&models.Sequence{Frames: []models.Frame{
		{Index: 0, ArbitrationID: "7E0", DataField: "01"},
		{Index: 1, ArbitrationID: "7E8", DataField: "02"},
	}})
	snap, _ := s.Toggle()
	s.events = nil

	snap, ok := s.Tick(snap.Token)
	require.True(t, ok)
	require.Equal(t, "7E0", snap.Emitted.ArbitrationID)
	require.Equal(t, 1, snap.Position)
	require.Equal(t, []models.EventType{
		models.EventTypeFrameEmitted,
		models.EventTypeIndicatorActive,
		models.EventTypePlaybackChanged,
	}, s.events)

	inds := s.Indicators()
	require.Len(t, inds, 1)
	require.Equal(t, activity.PhaseActive, inds[0].Phase)
	require.Len(t, s.deferrer.pending, 1)
	require.Equal(t, activity.DefaultDecayDelay, s.deferrer.pending[0].delay)

	snap, ok = s.Tick(snap.Token)
	require.True(t, ok)
	require.True(t, snap.Finished)
	require.Equal(t, 100, snap.Percent)
	require.Equal(t, playback.StateIdle, snap.State)
	require.Contains(t, s.events, models.EventTypePlaybackDone)
}

func TestStaleTickIsIgnored(t *testing.T) {
	s := newTestSession(t, Options{})
	s.Install(&models.Sequence{Frames: []models.Frame{{ArbitrationID: "7E0"}}})
	running, _ := s.Toggle()

	s.step()
	s.Toggle()

	_, ok := s.Tick(running.Token)
	require.False(t, ok)
	require.Equal(t, 0, s.Snapshot().Position)
}

func TestDecayAfterReloadIsNoop(t *testing.T) {
	s := newTestSession(t, Options{})
	seq := &models.Sequence{Frames: []models.Frame{{ArbitrationID: "7E0"}, {ArbitrationID: "7E8"}}}
	s.Install(seq)
	snap, _ := s.Toggle()
	s.Tick(snap.Token)
	require.Len(t, s.deferrer.pending, 1)
	stale := s.deferrer.pending[0].decay

	s.Install(seq)
	require.Empty(t, s.Indicators())
	require.False(t, s.ApplyDecay(stale))
}

func TestApplyDecayReturnsIndicatorToIdle(t *testing.T) {
	s := newTestSession(t, Options{})
	s.Install(&models.Sequence{Frames: []models.Frame{{ArbitrationID: "7E0"}, {ArbitrationID: "7E8"}}})
	snap, _ := s.Toggle()
	s.Tick(snap.Token)
	s.events = nil

	require.True(t, s.ApplyDecay(s.deferrer.pending[0].decay))
	require.Equal(t, activity.PhaseIdle, s.Indicators()[0].Phase)
	require.Equal(t, []models.EventType{models.EventTypeIndicatorIdle}, s.events)

	require.False(t, s.ApplyDecay(s.deferrer.pending[0].decay))
}

func TestSubmitFilterAppliesToTableAndGrid(t *testing.T) {
	s := newTestSession(t, Options{})
	s.Install(&models.Sequence{Frames: []models.Frame{
		{ArbitrationID: "7E0"},
		{ArbitrationID: "18FEF100"},
		{ArbitrationID: "7e8"},
	}})
	snap, _ := s.Toggle()
	snap, _ = s.Tick(snap.Token)
	s.Tick(snap.Token)

	s.step()
	visible, accepted := s.SubmitFilter("7E")
	require.True(t, accepted)
	require.Equal(t, []bool{true, false, true}, visible)
	require.Equal(t, []bool{true, false}, s.GridVisibility())

	// The query survives a new capture.
	s.Install(&models.Sequence{Frames: []models.Frame{{ArbitrationID: "100"}}})
	require.Equal(t, []bool{false}, s.Visibility())
}

func TestSetSpeedChangesInterval(t *testing.T) {
	s := newTestSession(t, Options{BaseInterval: 100 * time.Millisecond})

	snap, accepted := s.SetSpeed()
	require.True(t, accepted)
	require.Equal(t, 2, snap.Speed)
	require.Equal(t, 50*time.Millisecond, snap.Interval)
}

const engineDBC = `VERSION ""

BU_: ECU GATEWAY

BO_ 2016 EngineData: 8 ECU
 SG_ RPM : 0|16@1+ (1,0) [0|8000] "rpm" GATEWAY
`

func TestLoadDefinitionsInstallsCatalog(t *testing.T) {
	s := newTestSession(t, Options{})
	path := writeFile(t, "engine.dbc", engineDBC)

	require.NoError(t, s.LoadDefinitions(path))
	require.Equal(t, "EngineData", s.MessageName("7E0"))
	require.Equal(t, path, s.DefinitionsPath())
	require.Contains(t, s.events, models.EventTypeCatalogLoaded)
}

type failingParser struct{}

func (failingParser) Parse(_ string, _ []byte, h catalog.Handler) error {
	h.OnMessageDefinition(0x100, "First", 8, -1)
	return errors.New("unexpected token")
}

func TestLoadDefinitionsKeepsPartialCatalogOnFailure(t *testing.T) {
	s := newTestSession(t, Options{Parser: failingParser{}})
	path := writeFile(t, "broken.dbc", "ignored")

	err := s.LoadDefinitions(path)
	require.True(t, models.IsKind(err, models.KindDefinitionParseFailure))
	require.Equal(t, "First", s.MessageName("100"))
	require.Contains(t, s.events, models.EventTypeCatalogFailed)
}

func TestLoadDefinitionsUnreadableKeepsCatalog(t *testing.T) {
	s := newTestSession(t, Options{})
	require.NoError(t, s.LoadDefinitions(writeFile(t, "engine.dbc", engineDBC)))

	err := s.LoadDefinitions(filepath.Join(t.TempDir(), "missing.dbc"))
	require.True(t, models.IsKind(err, models.KindIOFailure))
	require.Equal(t, "EngineData", s.MessageName("7E0"))
}

func TestReloadCaptureBypassesDebounce(t *testing.T) {
	s := newTestSession(t, Options{})
	path := writeFile(t, "drive.log", threeFrames)
	_, _, err := s.LoadCapture(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("(1.0) can0 100#00\n"), 0o644))
	snap, err := s.ReloadCapture()
	require.NoError(t, err)
	require.Equal(t, 1, snap.Total)
}

func TestNoDebounceAcceptsBackToBackControls(t *testing.T) {
	s := newTestSession(t, Options{NoDebounce: true})
	s.Install(&models.Sequence{Frames: []models.Frame{{ArbitrationID: "7E0"}}})

	_, accepted := s.SubmitFilter("7e")
	require.True(t, accepted)
	_, accepted = s.Toggle()
	require.True(t, accepted)
	_, accepted = s.SetSpeed()
	require.True(t, accepted)
}
