// Package config defines the scanline configuration and its loading from
// files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/scanline/internal/camera"
	"github.com/MeKo-Tech/scanline/internal/detect"
	"github.com/MeKo-Tech/scanline/internal/symbology"
)

// Config represents the complete configuration for the scanline application.
// It covers all commands (scan, serve, formats) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose"   yaml:"verbose"   json:"verbose"`

	Camera   CameraConfig   `mapstructure:"camera"   yaml:"camera"   json:"camera"`
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector" json:"detector"`
	Server   ServerConfig   `mapstructure:"server"   yaml:"server"   json:"server"`
}

// CameraConfig contains camera acquisition settings.
type CameraConfig struct {
	Driver     string `mapstructure:"driver"      yaml:"driver"      json:"driver"`
	Command    string `mapstructure:"command"     yaml:"command"     json:"command"`
	DevicePath string `mapstructure:"device_path" yaml:"device_path" json:"device_path"`
	Facing     string `mapstructure:"facing"      yaml:"facing"      json:"facing"`
	Width      int    `mapstructure:"width"       yaml:"width"       json:"width"`
	Height     int    `mapstructure:"height"      yaml:"height"      json:"height"`
	FrameRate  int    `mapstructure:"frame_rate"  yaml:"frame_rate"  json:"frame_rate"`
}

// DetectorConfig contains barcode detection settings.
type DetectorConfig struct {
	Backend      string   `mapstructure:"backend"        yaml:"backend"        json:"backend"`
	Formats      []string `mapstructure:"formats"        yaml:"formats"        json:"formats"`
	TryHarder    bool     `mapstructure:"try_harder"     yaml:"try_harder"     json:"try_harder"`
	MaxImageSize int      `mapstructure:"max_image_size" yaml:"max_image_size" json:"max_image_size"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host"             yaml:"host"             json:"host"`
	Port            int    `mapstructure:"port"             yaml:"port"             json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin"      yaml:"cors_origin"      json:"cors_origin"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Camera: CameraConfig{
			Driver:    camera.DriverRpicam,
			Facing:    string(camera.FacingRear),
			Width:     1280,
			Height:    720,
			FrameRate: 30,
		},
		Detector: DetectorConfig{
			Backend:      detect.DefaultBackend,
			MaxImageSize: 1280,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			ShutdownTimeout: 10,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", c.LogLevel)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("invalid camera resolution %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FrameRate <= 0 {
		return fmt.Errorf("invalid camera frame_rate %d", c.Camera.FrameRate)
	}
	switch camera.FacingMode(c.Camera.Facing) {
	case camera.FacingRear, camera.FacingFront:
	default:
		return fmt.Errorf("invalid camera facing %q (want rear or front)", c.Camera.Facing)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// CameraConstraints converts the camera section into acquisition constraints.
func (c *Config) CameraConstraints() camera.Constraints {
	return camera.Constraints{
		Facing:     camera.FacingMode(c.Camera.Facing),
		Width:      c.Camera.Width,
		Height:     c.Camera.Height,
		FrameRate:  c.Camera.FrameRate,
		DevicePath: c.Camera.DevicePath,
	}
}

// CameraDriver converts the camera section into a driver config.
func (c *Config) CameraDriver() camera.Config {
	return camera.Config{
		Driver:     c.Camera.Driver,
		Command:    c.Camera.Command,
		DevicePath: c.Camera.DevicePath,
	}
}

// DetectConfig converts the detector section into a detection config.
func (c *Config) DetectConfig() detect.Config {
	ids := make([]symbology.ID, 0, len(c.Detector.Formats))
	for _, f := range c.Detector.Formats {
		ids = append(ids, symbology.Parse(f))
	}
	return detect.Config{
		Backend:      c.Detector.Backend,
		Formats:      ids,
		TryHarder:    c.Detector.TryHarder,
		MaxImageSize: c.Detector.MaxImageSize,
	}
}
