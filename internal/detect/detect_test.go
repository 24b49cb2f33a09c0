package detect

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scanline/internal/symbology"
)

func TestAvailableIncludesDefault(t *testing.T) {
	assert.Contains(t, Available(), DefaultBackend)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "no-such-decoder"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestNewEmptyBackendUsesDefault(t *testing.T) {
	d, err := New(Config{})
	require.NoError(t, err)
	require.NotNil(t, d)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-backend", func(Config) (Detector, error) { return nil, nil })
	assert.Panics(t, func() {
		Register("dup-backend", func(Config) (Detector, error) { return nil, nil })
	})
}

type stubDetector struct {
	matches []Match
}

func (s *stubDetector) Detect(context.Context, image.Image) ([]Match, error) {
	return s.matches, nil
}

func (s *stubDetector) Formats(context.Context) ([]symbology.ID, error) {
	return []symbology.ID{symbology.QRCode}, nil
}

func TestRegisteredFactoryReceivesConfig(t *testing.T) {
	var got Config
	Register("cfg-probe", func(cfg Config) (Detector, error) {
		got = cfg
		return &stubDetector{}, nil
	})

	cfg := Config{Backend: "cfg-probe", TryHarder: true, MaxImageSize: 640}
	_, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
