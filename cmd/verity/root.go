package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/verity/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool

	// settings holds the runtime configuration once loadSettings has run.
	settings config.Config
)

var rootCmd = &cobra.Command{
	Use:   "verity",
	Short: "Resolve design properties and verify requirements of a system model",
	Long: `verity reads a YAML model of a system: subsystems and users, the designs
that implement them, the interfaces between them and the requirements
allocated to them. It resolves every design property with its units and
reports each requirement as passed, failed or not checkable.

Settings are read from $HOME/.verity.yaml (or --config) and VERITY_*
environment variables; command-line flags take precedence.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := loadSettings(); err != nil {
			return err
		}
		installLogger(settings.SlogLevel())
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "read settings from this file instead of $HOME/.verity.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug detail to stderr (overrides log_level)")
}

// loadSettings reads the settings file, if any, layers VERITY_* variables
// over it and decodes the result into settings.
func loadSettings() error {
	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".verity")
		v.SetConfigType("yaml")
	}
	config.BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading settings: %w", err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid settings in %s: %w", settingsSource(v), err)
	}
	settings = cfg
	return nil
}

func settingsSource(v *viper.Viper) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	return "environment"
}

// installLogger sends text logs to stderr; --verbose forces debug.
func installLogger(level slog.Level) {
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	if file := viper.ConfigFileUsed(); file != "" {
		slog.Debug("settings loaded", "file", file)
	}
}
