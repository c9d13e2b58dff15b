// Package cli provides TUI launch commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/canplay/internal/config"
	"github.com/tOgg1/canplay/internal/replaytui"
	"github.com/tOgg1/canplay/internal/session"
)

var uiDefinitions string

func init() {
	rootCmd.AddCommand(uiCmd)
	uiCmd.Flags().StringVar(&uiDefinitions, "dbc", "", "DBC file with message names")
	uiCmd.Flags().Bool("watch", false, "reload the capture when it changes on disk")
	uiCmd.Flags().String("theme", "", "color theme (default, high-contrast)")
}

var uiCmd = &cobra.Command{
	Use:   "ui [capture]",
	Short: "Launch the replay TUI",
	Long:  "Launch the interactive replay interface. Captures and DBC files can also be opened from inside the UI.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capture := ""
		if len(args) == 1 {
			capture = args[0]
		}
		return runTUI(capture)
	},
}

// PreflightError is a refusal to start, with a hint for the user.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	if e.NextStep != "" {
		msg += "\n  try:  " + e.NextStep
	}
	return msg
}

func runTUI(capture string) error {
	if !hasTTY() {
		return &PreflightError{
			Message:  "TUI requires an interactive terminal",
			Hint:     "Run with a TTY, or use the headless commands",
			NextStep: fmt.Sprintf("canplay play %s", capture),
		}
	}

	cfg := GetConfig()
	return replaytui.Run(replaytui.Config{
		CapturePath:     capture,
		DefinitionsPath: uiDefinitions,
		Theme:           cfg.TUI.Theme,
		ShowTimestamps:  cfg.TUI.ShowTimestamps,
		Watch:           cfg.Watch.Enabled,
		WatchSettle:     cfg.Watch.Settle,
		Session:         sessionOptions(cfg),
	})
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func sessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		DebounceWindow: cfg.Playback.DebounceWindow,
		NoDebounce:     cfg.Playback.DebounceWindow == 0,
		InitialSpeed:   cfg.Playback.InitialSpeed,
		GridColumns:    cfg.Activity.GridColumns,
	}
}
