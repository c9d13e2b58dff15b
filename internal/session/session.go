// Package session owns the state of one replay: the loaded capture, the
// playback cursor, the activity grid, the message catalog and the filter.
//
// A Session is driven by exactly one loop. Displays call its control methods
// in response to user input, hand timer ticks and decays back to it, and
// observe changes through the events it publishes.
package session

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tOgg1/canplay/internal/activity"
	"github.com/tOgg1/canplay/internal/capture"
	"github.com/tOgg1/canplay/internal/catalog"
	"github.com/tOgg1/canplay/internal/events"
	"github.com/tOgg1/canplay/internal/filter"
	"github.com/tOgg1/canplay/internal/logging"
	"github.com/tOgg1/canplay/internal/models"
	"github.com/tOgg1/canplay/internal/playback"
)

// Options configures a Session. Zero values fall back to package defaults.
type Options struct {
	BaseInterval   time.Duration
	DebounceWindow time.Duration

	// NoDebounce accepts every control action. Scripted drivers that issue
	// controls back to back use it.
	NoDebounce bool

	InitialSpeed   int
	DecayDelay     time.Duration
	GridColumns    int

	// Deferrer schedules activity decays on the driving loop. Required for
	// indicators to ever return to idle.
	Deferrer activity.Deferrer

	// Now is the clock used for debouncing and event timestamps.
	Now func() time.Time

	// Publisher receives session events. Defaults to a new in-memory publisher.
	Publisher *events.InMemoryPublisher

	// Parser reads definition files. Defaults to catalog.DefaultParser.
	Parser catalog.Parser

	// LoadFile reads captures. Defaults to capture.LoadFile.
	LoadFile func(path string) (*models.Sequence, error)
}

// Session is the display-agnostic owner of replay state.
type Session struct {
	id     string
	now    func() time.Time
	logger zerolog.Logger

	scheduler *playback.Scheduler
	tracker   *activity.Tracker
	debouncer *playback.Debouncer
	publisher *events.InMemoryPublisher
	parser    catalog.Parser
	loadFile  func(path string) (*models.Sequence, error)

	catalog         *catalog.Catalog
	valueTables     *catalog.ValueTables
	definitionsPath string

	query   string
	visible []bool
}

// New creates an empty session with no capture loaded.
func New(opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	window := opts.DebounceWindow
	switch {
	case opts.NoDebounce:
		window = 0
	case window == 0:
		window = playback.DefaultDebounceWindow
	}
	pub := opts.Publisher
	if pub == nil {
		pub = events.NewInMemoryPublisher()
	}
	parser := opts.Parser
	if parser == nil {
		parser = catalog.DefaultParser
	}
	loadFile := opts.LoadFile
	if loadFile == nil {
		loadFile = capture.LoadFile
	}

	s := &Session{
		id:          uuid.NewString(),
		now:         now,
		debouncer:   playback.NewDebouncer(window, now),
		publisher:   pub,
		parser:      parser,
		loadFile:    loadFile,
		catalog:     catalog.NewCatalog(),
		valueTables: catalog.NewValueTables(),
	}
	s.logger = logging.WithSession(s.id).With().Str("component", "session").Logger()

	s.tracker = activity.NewTracker(opts.Deferrer,
		activity.WithColumns(opts.GridColumns),
		activity.WithDecayDelay(opts.DecayDelay),
	)
	s.scheduler = playback.NewScheduler(
		playback.WithBaseInterval(opts.BaseInterval),
		playback.WithSpeed(opts.InitialSpeed),
		playback.WithSink(s.tracker),
	)
	return s
}

// ID returns the session identifier stamped on every event.
func (s *Session) ID() string {
	return s.id
}

// Publisher returns the publisher displays subscribe to.
func (s *Session) Publisher() *events.InMemoryPublisher {
	return s.publisher
}

// LoadCapture reads the capture at path and installs it. A debounced call
// reports accepted=false and changes nothing. A failed read also changes
// nothing; the previous capture stays loaded.
func (s *Session) LoadCapture(path string) (snap playback.Snapshot, accepted bool, err error) {
	if !s.allow("load") {
		return s.scheduler.Snapshot(), false, nil
	}
	snap, err = s.loadPath(path)
	return snap, true, err
}

// ReloadCapture re-reads the current capture without consulting the
// debouncer. File watchers use it; it is not a user control.
func (s *Session) ReloadCapture() (playback.Snapshot, error) {
	seq := s.scheduler.Sequence()
	if seq == nil || seq.Source == "" {
		return s.scheduler.Snapshot(), nil
	}
	return s.loadPath(seq.Source)
}

func (s *Session) loadPath(path string) (playback.Snapshot, error) {
	seq, err := s.loadFile(path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("capture load failed")
		s.publish(models.EventTypeCaptureFailed, "", err)
		return s.scheduler.Snapshot(), err
	}
	return s.Install(seq), nil
}

// Install replaces the loaded sequence. Playback is reset to Idle, stopping
// the timer and clearing activity, before the new sequence becomes visible.
func (s *Session) Install(seq *models.Sequence) playback.Snapshot {
	if seq == nil {
		seq = &models.Sequence{}
	}
	snap := s.scheduler.Load(seq)
	s.visible = filter.Visibility(seq.Frames, s.query)

	s.logger.Info().
		Str("path", seq.Source).
		Str("format", seq.Format.String()).
		Int("frames", seq.Len()).
		Msg("capture installed")
	s.publish(models.EventTypeCaptureLoaded, "", seq)
	s.publish(models.EventTypePlaybackChanged, "", snap)
	return snap
}

// Toggle starts, resumes or pauses playback.
func (s *Session) Toggle() (playback.Snapshot, bool) {
	if !s.allow("toggle") {
		return s.scheduler.Snapshot(), false
	}
	snap := s.scheduler.Toggle()
	s.publish(models.EventTypePlaybackChanged, "", snap)
	return snap, true
}

// SetSpeed advances the speed multiplier. It takes effect from the next tick.
func (s *Session) SetSpeed() (playback.Snapshot, bool) {
	if !s.allow("speed") {
		return s.scheduler.Snapshot(), false
	}
	snap := s.scheduler.SetSpeed()
	s.publish(models.EventTypePlaybackChanged, "", snap)
	return snap, true
}

// SubmitFilter replaces the filter query and recomputes row visibility.
func (s *Session) SubmitFilter(query string) ([]bool, bool) {
	if !s.allow("filter") {
		return s.visible, false
	}
	s.query = query
	s.visible = filter.Visibility(s.frames(), query)
	s.logger.Debug().
		Str("query", query).
		Int("visible", filter.Count(s.visible)).
		Msg("filter applied")
	s.publish(models.EventTypeFilterApplied, "", query)
	return s.visible, true
}

// Tick delivers a timer tick. Ticks for a stopped timer are ignored.
func (s *Session) Tick(token uint64) (playback.Snapshot, bool) {
	snap, ok := s.scheduler.Tick(token)
	if !ok {
		return snap, false
	}
	if snap.Emitted != nil {
		id := snap.Emitted.ArbitrationID
		s.publish(models.EventTypeFrameEmitted, id, *snap.Emitted)
		s.publish(models.EventTypeIndicatorActive, id, nil)
	}
	s.publish(models.EventTypePlaybackChanged, "", snap)
	if snap.Finished {
		s.logger.Info().Int("frames", snap.Total).Msg("playback finished")
		s.publish(models.EventTypePlaybackDone, "", snap)
	}
	return snap, true
}

// ApplyDecay returns an indicator to idle. It reports whether anything changed.
func (s *Session) ApplyDecay(d activity.Decay) bool {
	if !s.tracker.ApplyDecay(d) {
		return false
	}
	s.publish(models.EventTypeIndicatorIdle, d.ID, nil)
	return true
}

// LoadDefinitions parses the definition file at path into a fresh catalog.
// On a parse failure the partially built catalog still replaces the previous
// one and the error is returned. An unreadable file changes nothing.
func (s *Session) LoadDefinitions(path string) error {
	c, v, err := s.parseDefinitions(path)
	if c == nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("definitions unreadable")
		s.publish(models.EventTypeCatalogFailed, "", err)
		return err
	}

	s.catalog = c
	s.valueTables = v
	s.definitionsPath = path

	if err != nil {
		s.publish(models.EventTypeCatalogFailed, "", err)
		return err
	}
	s.publish(models.EventTypeCatalogLoaded, "", c)
	return nil
}

func (s *Session) parseDefinitions(path string) (*catalog.Catalog, *catalog.ValueTables, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, models.NewError(models.KindIOFailure, path, fmt.Errorf("read definitions: %w", err))
	}
	return catalog.ParseWith(s.parser, path, text)
}

func (s *Session) frames() []models.Frame {
	if seq := s.scheduler.Sequence(); seq != nil {
		return seq.Frames
	}
	return nil
}

// Snapshot returns the current playback cursor.
func (s *Session) Snapshot() playback.Snapshot {
	return s.scheduler.Snapshot()
}

// Sequence returns the loaded capture, or nil.
func (s *Session) Sequence() *models.Sequence {
	return s.scheduler.Sequence()
}

// Query returns the applied filter query.
func (s *Session) Query() string {
	return s.query
}

// Visibility returns one flag per frame of the loaded capture.
func (s *Session) Visibility() []bool {
	return s.visible
}

// Indicators returns the activity grid in slot order.
func (s *Session) Indicators() []activity.Indicator {
	return s.tracker.Indicators()
}

// GridVisibility applies the filter query to the activity grid.
func (s *Session) GridVisibility() []bool {
	return filter.VisibleIDs(s.tracker.IDs(), s.query)
}

// GridColumns returns the activity grid width.
func (s *Session) GridColumns() int {
	return s.tracker.Columns()
}

// Catalog returns the installed message catalog.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// ValueTables returns the installed value tables.
func (s *Session) ValueTables() *catalog.ValueTables {
	return s.valueTables
}

// DefinitionsPath returns the path of the installed definition file.
func (s *Session) DefinitionsPath() string {
	return s.definitionsPath
}

// MessageName resolves a capture arbitration ID against the catalog.
func (s *Session) MessageName(arbID string) string {
	name, _ := s.catalog.LookupHex(arbID)
	return name
}

func (s *Session) allow(action string) bool {
	if s.debouncer.Allow() {
		return true
	}
	s.logger.Debug().Str("action", action).Msg("debounced")
	return false
}

func (s *Session) publish(typ models.EventType, arbID string, payload any) {
	s.publisher.Publish(&models.Event{
		Type:          typ,
		Timestamp:     s.now(),
		SessionID:     s.id,
		ArbitrationID: arbID,
		Payload:       payload,
	})
}
