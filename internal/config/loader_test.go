package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestLoader() *Loader {
	// Isolated viper instance so tests do not leak state into each other.
	return &Loader{v: viper.New()}
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Camera.Width, cfg.Camera.Width)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scanline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"log_level: debug\ncamera:\n  driver: ffmpeg\n  width: 640\n  height: 480\nserver:\n  port: 9090\n",
	), 0o644))

	l := newTestLoader()
	l.SetConfigFile(path)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ffmpeg", cfg.Camera.Driver)
	assert.Equal(t, 640, cfg.Camera.Width)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultConfig().Camera.FrameRate, cfg.Camera.FrameRate)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCANLINE_CAMERA_WIDTH", "1920")
	t.Setenv("SCANLINE_LOG_LEVEL", "warn")

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Camera.Width)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scanline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: chatty\n"), 0o644))

	l := newTestLoader()
	l.SetConfigFile(path)
	_, err := l.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanline.yaml")
	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, DefaultConfig().Camera.Driver, cfg.Camera.Driver)

	// Refuses to overwrite.
	assert.Error(t, WriteDefault(path))
}
