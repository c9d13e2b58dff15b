// Package replaytui is the interactive terminal display for a replay session.
package replaytui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tOgg1/canplay/internal/activity"
	"github.com/tOgg1/canplay/internal/catalog"
	"github.com/tOgg1/canplay/internal/events"
	"github.com/tOgg1/canplay/internal/filter"
	"github.com/tOgg1/canplay/internal/logging"
	"github.com/tOgg1/canplay/internal/models"
	"github.com/tOgg1/canplay/internal/replaytui/styles"
	"github.com/tOgg1/canplay/internal/session"
	"github.com/tOgg1/canplay/internal/watch"
)

const subscriptionID = "replaytui"

type Config struct {
	CapturePath     string
	DefinitionsPath string
	Theme           string
	ShowTimestamps  bool
	Watch           bool
	WatchSettle     time.Duration
	Session         session.Options
}

type promptKind int

const (
	promptNone promptKind = iota
	promptFilter
	promptCapture
	promptDefinitions
)

// tickMsg is a playback timer firing. token ties it to the timer that scheduled it.
type tickMsg struct {
	token uint64
}

type decayMsg struct {
	decay activity.Decay
}

// reloadMsg is sent by the file watcher from outside the program loop.
type reloadMsg struct {
	path string
}

func tickCmd(interval time.Duration, token uint64) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{token: token}
	})
}

// decayQueue collects decays the tracker schedules during an update so the
// model can return them as commands.
type decayQueue struct {
	pending []pendingDecay
}

type pendingDecay struct {
	delay time.Duration
	decay activity.Decay
}

func (q *decayQueue) Defer(delay time.Duration, d activity.Decay) {
	q.pending = append(q.pending, pendingDecay{delay: delay, decay: d})
}

func (q *decayQueue) drain() []tea.Cmd {
	if len(q.pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(q.pending))
	for _, p := range q.pending {
		d := p.decay
		cmds = append(cmds, tea.Tick(p.delay, func(time.Time) tea.Msg {
			return decayMsg{decay: d}
		}))
	}
	q.pending = q.pending[:0]
	return cmds
}

type Model struct {
	session        *session.Session
	decays         *decayQueue
	theme          styles.Theme
	keys           keyMap
	help           help.Model
	input          textinput.Model
	prompt         promptKind
	showTimestamps bool

	width    int
	height   int
	showHelp bool

	status      string
	statusError bool
	lastEmitted int
}

func NewModel(cfg Config) (*Model, error) {
	normalized, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	theme, _ := styles.Lookup(normalized.Theme)

	decays := &decayQueue{}
	opts := normalized.Session
	opts.Deferrer = decays

	input := textinput.New()
	input.CharLimit = 512

	m := &Model{
		session:        session.New(opts),
		decays:         decays,
		theme:          theme,
		keys:           defaultKeyMap(),
		help:           help.New(),
		input:          input,
		showTimestamps: normalized.ShowTimestamps,
		lastEmitted:    -1,
	}
	if err := m.session.Publisher().Subscribe(subscriptionID, events.Filter{
		EventTypes: []models.EventType{
			models.EventTypeCaptureLoaded,
			models.EventTypeCaptureFailed,
			models.EventTypeCatalogLoaded,
			models.EventTypeCatalogFailed,
			models.EventTypeFilterApplied,
			models.EventTypePlaybackDone,
		},
	}, m.observe); err != nil {
		return nil, fmt.Errorf("subscribe to session: %w", err)
	}

	// Startup load failures are shown in the status line, not returned.
	if normalized.DefinitionsPath != "" {
		_ = m.session.LoadDefinitions(normalized.DefinitionsPath)
	}
	if normalized.CapturePath != "" {
		_, _, _ = m.session.LoadCapture(normalized.CapturePath)
	}
	return m, nil
}

func Run(cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())

	if cfg.Watch && cfg.CapturePath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w := watch.New(cfg.CapturePath, cfg.WatchSettle, func(path string) {
			program.Send(reloadMsg{path: path})
		})
		go func() {
			if err := w.Run(ctx); err != nil {
				log := logging.Component("replaytui")
				log.Warn().Err(err).Msg("capture watch disabled")
			}
		}()
	}

	_, err = program.Run()
	return err
}

func (m *Model) Close() error {
	if m == nil || m.session == nil {
		return nil
	}
	m.session.Publisher().Close()
	return nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.help.Width = typed.Width
		return m, nil
	case tickMsg:
		return m, m.handleTick(typed.token)
	case decayMsg:
		m.session.ApplyDecay(typed.decay)
		return m, nil
	case reloadMsg:
		return m, m.handleReload(typed.path)
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m, m.updatePrompt(typed)
		}
		return m, m.handleKey(typed)
	}

	if m.prompt != promptNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleTick(token uint64) tea.Cmd {
	snap, ok := m.session.Tick(token)
	if !ok {
		return nil
	}
	if snap.Emitted != nil {
		m.lastEmitted = snap.Emitted.Index
	}
	cmds := m.decays.drain()
	if snap.Running {
		cmds = append(cmds, tickCmd(snap.Interval, snap.Token))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleReload(path string) tea.Cmd {
	seq := m.session.Sequence()
	if seq == nil || filepath.Clean(seq.Source) != filepath.Clean(path) {
		return nil
	}
	_, _ = m.session.ReloadCapture()
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return nil
	case key.Matches(msg, m.keys.Toggle):
		snap, accepted := m.session.Toggle()
		if accepted && snap.Running {
			return tickCmd(snap.Interval, snap.Token)
		}
		return nil
	case key.Matches(msg, m.keys.Speed):
		m.session.SetSpeed()
		return nil
	case key.Matches(msg, m.keys.Filter):
		return m.openPrompt(promptFilter, "/ ", m.session.Query())
	case key.Matches(msg, m.keys.OpenCapture):
		source := ""
		if seq := m.session.Sequence(); seq != nil {
			source = seq.Source
		}
		return m.openPrompt(promptCapture, "capture: ", source)
	case key.Matches(msg, m.keys.OpenDefs):
		return m.openPrompt(promptDefinitions, "dbc: ", m.session.DefinitionsPath())
	}
	return nil
}

func (m *Model) openPrompt(kind promptKind, label, value string) tea.Cmd {
	m.prompt = kind
	m.input.Prompt = label
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return nil
	case tea.KeyCtrlC:
		return tea.Quit
	case tea.KeyEnter:
		kind, value := m.prompt, m.input.Value()
		m.closePrompt()
		m.submitPrompt(kind, value)
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) submitPrompt(kind promptKind, value string) {
	switch kind {
	case promptFilter:
		m.session.SubmitFilter(strings.TrimSpace(value))
	case promptCapture:
		if path := strings.TrimSpace(value); path != "" {
			_, _, _ = m.session.LoadCapture(path)
		}
	case promptDefinitions:
		if path := strings.TrimSpace(value); path != "" {
			_ = m.session.LoadDefinitions(path)
		}
	}
}

// observe turns session events into status line text.
func (m *Model) observe(e *models.Event) {
	switch e.Type {
	case models.EventTypeCaptureLoaded:
		m.lastEmitted = -1
		if seq, ok := e.Payload.(*models.Sequence); ok {
			text := fmt.Sprintf("loaded %d frames from %s", seq.Len(), filepath.Base(seq.Source))
			if seq.Skipped > 0 {
				text += fmt.Sprintf(" (%d lines skipped)", seq.Skipped)
			}
			m.setStatus(text, false)
		}
	case models.EventTypeCatalogLoaded:
		if c, ok := e.Payload.(*catalog.Catalog); ok {
			m.setStatus(fmt.Sprintf("%d messages from %s", c.Len(), filepath.Base(m.session.DefinitionsPath())), false)
		}
	case models.EventTypeCaptureFailed, models.EventTypeCatalogFailed:
		if err, ok := e.Payload.(error); ok {
			m.setStatus(err.Error(), true)
		}
	case models.EventTypeFilterApplied:
		query, _ := e.Payload.(string)
		if query == "" {
			m.setStatus("filter cleared", false)
			return
		}
		m.setStatus(fmt.Sprintf("filter %q: %d frames", query, filter.Count(m.session.Visibility())), false)
	case models.EventTypePlaybackDone:
		m.setStatus("playback finished", false)
	}
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusError = isError
}

func (c Config) normalize() (Config, error) {
	c.CapturePath = strings.TrimSpace(c.CapturePath)
	c.DefinitionsPath = strings.TrimSpace(c.DefinitionsPath)
	if strings.TrimSpace(c.Theme) == "" {
		c.Theme = styles.DefaultTheme.Name
	}
	if _, ok := styles.Lookup(c.Theme); !ok {
		return Config{}, fmt.Errorf("invalid theme %q", c.Theme)
	}
	return c, nil
}
