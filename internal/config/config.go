// Package config holds the runtime configuration of the verity CLI.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reglet-dev/verity/internal/domain/services"
	"github.com/reglet-dev/verity/internal/domain/values"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. VERITY_FAIL_ON.
const EnvPrefix = "VERITY"

// Config holds all runtime configuration for a verity session.
// Values are populated from .verity.yaml, VERITY_* env vars, and CLI flags.
type Config struct {
	Format         string        `mapstructure:"format"`
	FailOn         string        `mapstructure:"fail_on"`
	ReferenceScope string        `mapstructure:"reference_scope"`
	LogLevel       string        `mapstructure:"log_level"`
	WatchDebounce  time.Duration `mapstructure:"watch_debounce"`
	Concurrency    int           `mapstructure:"concurrency"`
	Color          bool          `mapstructure:"color"`
}

// SetDefaults registers the built-in default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("format", "table")
	v.SetDefault("fail_on", "error")
	v.SetDefault("reference_scope", string(services.ScopeNarrow))
	v.SetDefault("log_level", "info")
	v.SetDefault("watch_debounce", 300*time.Millisecond)
	v.SetDefault("concurrency", 4)
	v.SetDefault("color", true)
}

// BindEnv makes every key overridable from VERITY_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, _ := Load(viper.New())
	return cfg
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if c.FailOn != "never" {
		if _, err := values.NewSeverity(c.FailOn); err != nil {
			return fmt.Errorf("fail_on: %w", err)
		}
	}
	if _, err := services.ParseReferenceScope(c.ReferenceScope); err != nil {
		return fmt.Errorf("reference_scope: %w", err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	return nil
}

// FailThreshold returns the severity at which verification fails, and false
// when fail_on is "never".
func (c Config) FailThreshold() (values.Severity, bool) {
	if c.FailOn == "never" {
		return values.Severity{}, false
	}
	sev, err := values.NewSeverity(c.FailOn)
	if err != nil {
		return values.SevError, true
	}
	return sev, true
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
