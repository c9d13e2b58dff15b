// Package cli implements the canplay command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tOgg1/canplay/internal/config"
	"github.com/tOgg1/canplay/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	appConfig *config.Config
)

// flagBindings maps config keys to the command flags that override them.
// Only flags present on the running command are bound.
var flagBindings = map[string]string{
	"logging.level":          "log-level",
	"logging.format":         "log-format",
	"playback.initial_speed": "speed",
	"tui.theme":              "theme",
	"watch.enabled":          "watch",
}

var rootCmd = &cobra.Command{
	Use:           "canplay",
	Short:         "Replay CAN bus captures",
	Long:          "canplay replays candump and CSV captures of CAN bus traffic, with an activity grid and DBC message names.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/canplay/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging format (json, console)")
}

// ExecuteContext runs the root command. ctx is cancelled on interrupt.
func ExecuteContext(ctx context.Context, version string) error {
	rootCmd.Version = version
	return rootCmd.ExecuteContext(ctx)
}

// GetConfig returns the loaded configuration, or defaults before loading.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

func initConfig(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}
	for key, name := range flagBindings {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := loader.Viper().BindPFlag(key, flag); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	appConfig = cfg

	return initLogging(cfg, cmd.Name() == uiCmd.Name())
}

// initLogging configures the global logger. The UI owns the terminal, so it
// logs to logging.file when set and discards output otherwise.
func initLogging(cfg *config.Config, ownsTerminal bool) error {
	var out io.Writer = os.Stderr
	if cfg.Logging.File != "" {
		f, err := logging.OpenFile(cfg.Logging.File)
		if err != nil {
			return err
		}
		out = f
	} else if ownsTerminal {
		logging.Disable()
		return nil
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       out,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	return nil
}
