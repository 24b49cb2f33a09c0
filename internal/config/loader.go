package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "scanline"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SCANLINE"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader. It uses the global viper
// instance so cobra flag bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// GetViper exposes the underlying viper instance for flag binding and tests.
func (l *Loader) GetViper() *viper.Viper { return l.v }

// Load loads configuration from files, environment variables, and defaults,
// then validates it.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// SetConfigFile forces a specific configuration file path.
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "scanline"))
	}
	l.v.AddConfigPath("/etc/scanline")
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

func (l *Loader) setDefaults() {
	def := DefaultConfig()
	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("verbose", def.Verbose)
	l.v.SetDefault("camera.driver", def.Camera.Driver)
	l.v.SetDefault("camera.facing", def.Camera.Facing)
	l.v.SetDefault("camera.width", def.Camera.Width)
	l.v.SetDefault("camera.height", def.Camera.Height)
	l.v.SetDefault("camera.frame_rate", def.Camera.FrameRate)
	l.v.SetDefault("detector.backend", def.Detector.Backend)
	l.v.SetDefault("detector.max_image_size", def.Detector.MaxImageSize)
	l.v.SetDefault("server.host", def.Server.Host)
	l.v.SetDefault("server.port", def.Server.Port)
	l.v.SetDefault("server.cors_origin", def.Server.CORSOrigin)
	l.v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
}

// WriteDefault writes the default configuration as YAML to path, refusing to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
