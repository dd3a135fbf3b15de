package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multilang.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: false\nlog_level: warn\nmetrics_file: /tmp/m.prom\nmanual_anchoring: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		LogLevel:        "warn",
		MetricsFile:     "/tmp/m.prom",
		ManualAnchoring: true,
	}, cfg)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoadNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvMetricsFile, "/tmp/env.prom")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/env.prom", cfg.MetricsFile)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestApplyEnvBadBool(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(func(key string) (string, bool) {
		if key == EnvManualAnchoring {
			return "maybe", true
		}
		return "", false
	})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Config{LogLevel: "DEBUG"}.Validate())
	assert.Error(t, Config{LogLevel: "verbose"}.Validate())
}
