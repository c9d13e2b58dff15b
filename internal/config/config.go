// Package config handles canplay configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/tOgg1/canplay/internal/activity"
	"github.com/tOgg1/canplay/internal/playback"
)

// Config is the root configuration structure for canplay.
type Config struct {
	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Playback settings
	Playback PlaybackConfig `yaml:"playback" mapstructure:"playback"`

	// Activity indicator settings
	Activity ActivityConfig `yaml:"activity" mapstructure:"activity"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`

	// Watch settings
	Watch WatchConfig `yaml:"watch" mapstructure:"watch"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The UI discards logs when unset.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// PlaybackConfig contains scheduler settings. The tick period at speed 1
// (100ms) and the activity decay delay (500ms) are fixed and not configurable.
type PlaybackConfig struct {
	// DebounceWindow is the minimum gap between accepted control actions.
	DebounceWindow time.Duration `yaml:"debounce_window" mapstructure:"debounce_window"`

	// InitialSpeed is the starting multiplier (1, 2, 4, 8, 16, 32).
	InitialSpeed int `yaml:"initial_speed" mapstructure:"initial_speed"`
}

// ActivityConfig contains activity grid settings.
type ActivityConfig struct {
	// GridColumns is the number of indicators per grid row.
	GridColumns int `yaml:"grid_columns" mapstructure:"grid_columns"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// ShowTimestamps shows the timestamp column in the frame table.
	ShowTimestamps bool `yaml:"show_timestamps" mapstructure:"show_timestamps"`
}

// WatchConfig contains file watching settings.
type WatchConfig struct {
	// Enabled reloads the capture when the file changes on disk.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Settle is how long to wait after the last write before reloading.
	Settle time.Duration `yaml:"settle" mapstructure:"settle"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Playback: PlaybackConfig{
			DebounceWindow: playback.DefaultDebounceWindow,
			InitialSpeed:   1,
		},
		Activity: ActivityConfig{
			GridColumns: activity.DefaultGridColumns,
		},
		TUI: TUIConfig{
			Theme:          "default",
			ShowTimestamps: true,
		},
		Watch: WatchConfig{
			Enabled: false,
			Settle:  100 * time.Millisecond,
		},
	}
}

var validThemes = map[string]bool{
	"default":       true,
	"high-contrast": true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	switch c.Logging.Format {
	case "console", "json":
	default:
		errs.AddMessage("logging.format", fmt.Sprintf("must be console or json, got %q", c.Logging.Format))
	}

	if c.Playback.DebounceWindow < 0 {
		errs.AddMessage("playback.debounce_window", "must not be negative")
	}
	if !playback.ValidSpeed(c.Playback.InitialSpeed) {
		errs.AddMessage("playback.initial_speed", fmt.Sprintf("must be one of %v", playback.Speeds))
	}

	if c.Activity.GridColumns < 1 {
		errs.AddMessage("activity.grid_columns", "must be at least 1")
	}

	if !validThemes[c.TUI.Theme] {
		errs.AddMessage("tui.theme", fmt.Sprintf("unknown theme %q", c.TUI.Theme))
	}

	if c.Watch.Settle < 0 {
		errs.AddMessage("watch.settle", "must not be negative")
	}

	return errs.Err()
}
