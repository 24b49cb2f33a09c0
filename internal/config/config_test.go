package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scanline/internal/camera"
	"github.com/MeKo-Tech/scanline/internal/symbology"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, camera.DriverRpicam, cfg.Camera.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"zero width", func(c *Config) { c.Camera.Width = 0 }},
		{"negative frame rate", func(c *Config) { c.Camera.FrameRate = -1 }},
		{"bad facing", func(c *Config) { c.Camera.Facing = "sideways" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCameraConstraints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera.Facing = "front"
	cfg.Camera.Width = 640
	cfg.Camera.Height = 480

	c := cfg.CameraConstraints()
	assert.Equal(t, camera.FacingFront, c.Facing)
	assert.Equal(t, 640, c.Width)
	assert.Equal(t, 480, c.Height)
}

func TestDetectConfigParsesFormats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detector.Formats = []string{"QR", "ean13", "code_128"}

	dc := cfg.DetectConfig()
	assert.Equal(t, []symbology.ID{
		symbology.QRCode, symbology.EAN13, symbology.Code128,
	}, dc.Formats)
}
