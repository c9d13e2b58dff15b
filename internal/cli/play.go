package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/canplay/internal/activity"
	"github.com/tOgg1/canplay/internal/config"
	"github.com/tOgg1/canplay/internal/filter"
	"github.com/tOgg1/canplay/internal/logging"
	"github.com/tOgg1/canplay/internal/models"
	"github.com/tOgg1/canplay/internal/session"
)

var (
	playDefinitions string
	playFilter      string
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringVar(&playDefinitions, "dbc", "", "DBC file with message names")
	playCmd.Flags().StringVar(&playFilter, "filter", "", "only print frames whose ID contains this text")
	playCmd.Flags().Int("speed", 1, "speed multiplier (1, 2, 4, 8, 16, 32)")
}

var playCmd = &cobra.Command{
	Use:   "play <capture>",
	Short: "Replay a capture without the UI",
	Long:  "Replay a capture at its configured rate, printing each frame as it is emitted.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd.Context(), cmd.OutOrStdout(), playOptions{
			Capture:     args[0],
			Definitions: playDefinitions,
			Filter:      playFilter,
			Config:      GetConfig(),
		})
	},
}

type playOptions struct {
	Capture     string
	Definitions string
	Filter      string
	Config      *config.Config

	// tick and decay shorten the fixed replay clock in tests; zero keeps it.
	tick  time.Duration
	decay time.Duration
}

// runPlay drives a session from a single select loop. Decays wait in a FIFO
// queue; every decay has the same delay, so due times are already ordered.
func runPlay(ctx context.Context, out io.Writer, opts playOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Component("play")

	decays := &decayQueue{}
	sessOpts := sessionOptions(opts.Config)
	sessOpts.NoDebounce = true
	sessOpts.BaseInterval = opts.tick
	sessOpts.DecayDelay = opts.decay
	sessOpts.Deferrer = activity.DeferFunc(func(delay time.Duration, d activity.Decay) {
		decays.push(time.Now().Add(delay), d)
	})
	sess := session.New(sessOpts)

	if opts.Definitions != "" {
		if err := sess.LoadDefinitions(opts.Definitions); err != nil {
			if !models.IsKind(err, models.KindDefinitionParseFailure) {
				return err
			}
			logger.Warn().Err(err).Msg("using partial definitions")
		}
	}
	if _, _, err := sess.LoadCapture(opts.Capture); err != nil {
		return err
	}
	if opts.Filter != "" {
		sess.SubmitFilter(opts.Filter)
	}

	snap, _ := sess.Toggle()
	token := snap.Token
	nextTick := time.Now().Add(snap.Interval)
	printed := 0

	timer := time.NewTimer(time.Until(nextTick))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-timer.C:
			for _, d := range decays.popDue(now) {
				sess.ApplyDecay(d)
			}
			if now.Before(nextTick) {
				break
			}

			snap, ok := sess.Tick(token)
			if !ok {
				return nil
			}
			if f := snap.Emitted; f != nil && filter.Matches(f.ArbitrationID, sess.Query()) {
				if _, err := fmt.Fprintln(out, formatFrame(*f, sess.MessageName(f.ArbitrationID))); err != nil {
					return err
				}
				printed++
			}
			if snap.Finished {
				_, err := fmt.Fprintf(out, "%d of %d frames, %d identifiers\n", printed, snap.Total, len(sess.Indicators()))
				return err
			}
			token = snap.Token
			nextTick = now.Add(snap.Interval)
		}

		wake := nextTick
		if due, ok := decays.peek(); ok && due.Before(wake) {
			wake = due
		}
		timer.Reset(time.Until(wake))
	}
}

func formatFrame(f models.Frame, name string) string {
	id := f.ArbitrationID
	if name != "" {
		id += " " + name
	}
	return fmt.Sprintf("%-18s %-6s %-24s %s", f.Timestamp, f.Interface, id, f.DataField)
}

type scheduledDecay struct {
	due   time.Time
	decay activity.Decay
}

type decayQueue struct {
	items []scheduledDecay
}

func (q *decayQueue) push(due time.Time, d activity.Decay) {
	q.items = append(q.items, scheduledDecay{due: due, decay: d})
}

func (q *decayQueue) peek() (time.Time, bool) {
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].due, true
}

func (q *decayQueue) popDue(now time.Time) []activity.Decay {
	n := 0
	for n < len(q.items) && !q.items[n].due.After(now) {
		n++
	}
	if n == 0 {
		return nil
	}
	due := make([]activity.Decay, n)
	for i := range due {
		due[i] = q.items[i].decay
	}
	q.items = q.items[n:]
	return due
}
