// Package config loads the process level settings of a multilang component.
// Topology configuration is not here: it arrives from the parent during the
// handshake.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDebug           = "MULTILANG_DEBUG"
	EnvLogLevel        = "MULTILANG_LOG_LEVEL"
	EnvMetricsFile     = "MULTILANG_METRICS_FILE"
	EnvManualAnchoring = "MULTILANG_MANUAL_ANCHORING"
)

// Config holds the process settings.
type Config struct {
	Debug           bool   `yaml:"debug"`
	LogLevel        string `yaml:"log_level"`
	MetricsFile     string `yaml:"metrics_file"`
	ManualAnchoring bool   `yaml:"manual_anchoring"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{LogLevel: "info"}
}

// Load reads the YAML file at path, if path is not empty, and applies the
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		c.Debug = b
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvMetricsFile); ok {
		c.MetricsFile = v
	}
	if v, ok := lookup(EnvManualAnchoring); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvManualAnchoring, err)
		}
		c.ManualAnchoring = b
	}
	return nil
}

// Validate checks the log level.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
}

// SlogLevel returns the slog level for the configured log level. Debug
// forces slog.LevelDebug.
func (c Config) SlogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
