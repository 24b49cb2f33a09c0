// Package camera abstracts exclusive camera-stream acquisition behind a
// small device interface with exec-backed and synthetic implementations.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"time"
)

// FacingMode expresses which camera to prefer on multi-camera hosts.
type FacingMode string

const (
	FacingRear  FacingMode = "rear"
	FacingFront FacingMode = "front"
)

// Constraints carries the acquisition hints passed to a device. Devices
// treat them as preferences, not hard requirements.
type Constraints struct {
	Facing    FacingMode
	Width     int
	Height    int
	FrameRate int
	// DevicePath selects an explicit host device (e.g. /dev/video0) where
	// the driver supports it.
	DevicePath string
}

// DefaultConstraints prefers the rear camera at 1280x720.
func DefaultConstraints() Constraints {
	return Constraints{Facing: FacingRear, Width: 1280, Height: 720, FrameRate: 30}
}

// Frame is a single captured frame in its JPEG wire form. Decoding to pixels
// is deferred so sinks that relay compressed frames never pay for it.
type Frame struct {
	Data []byte
	Seq  uint64
	Time time.Time
}

// Decode decompresses the frame into an image.
func (f Frame) Decode() (image.Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, fmt.Errorf("camera: decode frame %d: %w", f.Seq, err)
	}
	return img, nil
}

// Stream is one acquired camera stream. Frames returns a channel that closes
// when the stream stops; Stop releases the underlying capture and is safe to
// call more than once.
type Stream interface {
	Frames() <-chan Frame
	Stop()
}

// Device acquires camera streams. At most one open stream per device is
// supported; a second Open while one is live returns an error.
type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Config selects and parameterizes a capture driver.
type Config struct {
	Driver     string `mapstructure:"driver"      yaml:"driver"      json:"driver"`
	Command    string `mapstructure:"command"     yaml:"command"     json:"command"`
	DevicePath string `mapstructure:"device_path" yaml:"device_path" json:"device_path"`
}

// DefaultConfig returns the default capture driver selection.
func DefaultConfig() Config {
	return Config{Driver: DriverRpicam}
}

// Supported capture drivers.
const (
	DriverRpicam = "rpicam"
	DriverFFmpeg = "ffmpeg"
)

// New constructs the configured capture device.
func New(cfg Config) (Device, error) {
	switch cfg.Driver {
	case DriverRpicam, "":
		return newExecDevice(rpicamCommand(cfg)), nil
	case DriverFFmpeg:
		return newExecDevice(ffmpegCommand(cfg)), nil
	case DriverPlayback:
		return PlaybackFromDir(cfg.DevicePath)
	default:
		return nil, fmt.Errorf("camera: unknown driver %q", cfg.Driver)
	}
}
