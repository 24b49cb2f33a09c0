// Package scanner implements the continuous barcode scanning lifecycle:
// camera acquisition, the per-frame detection loop, and the broadcast
// delivery of decoded values.
package scanner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/scanline/internal/camera"
	"github.com/MeKo-Tech/scanline/internal/detect"
	"github.com/MeKo-Tech/scanline/internal/symbology"
)

// ErrUnsupported terminates the result stream when no decoder backend is
// available in this build or configuration.
var ErrUnsupported = errors.New("scanner: barcode detection not supported")

// ErrStreamEnded terminates the result stream when the camera stream ends
// without StopScanning, e.g. when the capture process dies mid-session.
var ErrStreamEnded = errors.New("scanner: camera stream ended")

// Config wires the scanner's collaborators. Device is required. Detector is
// optional; when nil, one is constructed from Detect, and construction
// failure leaves the service in the unsupported state.
type Config struct {
	Device      camera.Device
	Detector    detect.Detector
	Detect      detect.Config
	Constraints camera.Constraints
}

// DefaultConfig returns a config with default detection settings and
// rear-facing 720p acquisition. The camera device must still be set.
func DefaultConfig() Config {
	return Config{
		Detect:      detect.DefaultConfig(),
		Constraints: camera.DefaultConstraints(),
	}
}

// Service drives at most one scanning session at a time. The detector is
// constructed once and shared across sessions; stream and sink handles are
// exclusively owned by the current session.
type Service struct {
	device      camera.Device
	detector    detect.Detector
	constraints camera.Constraints

	mu      sync.Mutex
	active  bool
	stream  camera.Stream
	sink    Sink
	ownSink bool
	results *Results
	session uint64

	catalogOnce sync.Once
	catalog     []symbology.ID
}

// New constructs the scanner service. The capability probe happens here:
// a service whose detector cannot be constructed reports Supported() false
// and terminates every started stream with ErrUnsupported.
func New(cfg Config) *Service {
	det := cfg.Detector
	if det == nil {
		d, err := detect.New(cfg.Detect)
		if err != nil {
			slog.Warn("barcode detection unavailable", "error", err)
		} else {
			det = d
		}
	}
	constraints := cfg.Constraints
	if constraints == (camera.Constraints{}) {
		constraints = camera.DefaultConstraints()
	}
	return &Service{device: cfg.Device, detector: det, constraints: constraints}
}

// Supported reports whether a detection capability is available. The answer
// is fixed at construction.
func (s *Service) Supported() bool { return s.detector != nil }

// Active reports whether a scanning session is currently running.
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// StartScanning begins a scanning session and returns its result stream.
// Callers subscribe to the returned stream for decoded values. If a session
// is already active the existing stream is returned unchanged and no second
// acquisition is issued. When detection is unsupported or camera acquisition
// fails, the returned stream is already terminated with the cause and no
// hardware is held.
//
// sink may be nil; an owned no-op sink is attached in that case. A non-nil
// sink is borrowed and never closed by the scanner.
func (s *Service) StartScanning(ctx context.Context, sink Sink) *Results {
	s.mu.Lock()
	if s.active {
		r := s.results
		s.mu.Unlock()
		return r
	}

	results := newResults()
	s.results = results

	if s.detector == nil {
		s.mu.Unlock()
		results.fail(ErrUnsupported)
		return results
	}

	s.active = true
	s.mu.Unlock()
	activeSessions.Inc()

	stream, err := s.device.Open(ctx, s.constraints)
	if err != nil {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
		activeSessions.Dec()
		slog.Error("camera acquisition failed", "error", err)
		results.fail(err)
		return results
	}

	own := false
	if sink == nil {
		sink = discardSink{}
		own = true
	}

	s.mu.Lock()
	if !s.active {
		// Stopped while acquiring: the session is already rolled back, so
		// release what we just obtained and hand back the (ended) stream.
		s.mu.Unlock()
		stream.Stop()
		if own {
			_ = sink.Close()
		}
		return results
	}
	s.stream = stream
	s.sink = sink
	s.ownSink = own
	s.session++
	id := s.session
	s.mu.Unlock()

	slog.Info("scanning session started",
		"facing", s.constraints.Facing,
		"width", s.constraints.Width,
		"height", s.constraints.Height)

	go s.detectLoop(ctx, id, stream, sink, results)
	return results
}

// StopScanning ends the current session: releases the camera stream,
// detaches the sink (closing it only if internally created) and terminates
// the session's result stream cleanly. Calling it with no active session,
// or repeatedly, is a no-op.
func (s *Service) StopScanning() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stream, sink, own, results := s.stream, s.sink, s.ownSink, s.results
	s.stream = nil
	s.sink = nil
	s.ownSink = false
	s.mu.Unlock()

	releaseSession(stream, sink, own)
	results.stop()
	activeSessions.Dec()
	slog.Info("scanning session stopped")
}

// endSession tears down the session identified by id after its frame stream
// ended on its own. Unlike StopScanning this is not the clean path: the
// result stream terminates with cause. A session already replaced or stopped
// is left alone.
func (s *Service) endSession(id uint64, cause error) {
	s.mu.Lock()
	if !s.active || s.session != id {
		s.mu.Unlock()
		return
	}
	s.active = false
	stream, sink, own, results := s.stream, s.sink, s.ownSink, s.results
	s.stream = nil
	s.sink = nil
	s.ownSink = false
	s.mu.Unlock()

	releaseSession(stream, sink, own)
	results.fail(cause)
	activeSessions.Dec()
	slog.Error("scanning session ended", "error", cause)
}

func releaseSession(stream camera.Stream, sink Sink, own bool) {
	if stream != nil {
		stream.Stop()
	}
	if own && sink != nil {
		_ = sink.Close()
	}
}

// sessionActive reports whether the session identified by id is still the
// live one. The detection loop checks it each tick and again after every
// in-flight detection so late results are discarded, never delivered.
func (s *Service) sessionActive(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.session == id
}

// detectLoop submits one detection per camera frame. Frame arrival paces the
// loop, each iteration awaits its detection before the next frame is taken,
// and per-frame failures are absorbed. StopScanning terminates the loop
// silently; a frame stream that ends while the session is still live takes
// the session down with ErrStreamEnded.
func (s *Service) detectLoop(ctx context.Context, id uint64, stream camera.Stream, sink Sink, results *Results) {
	for frame := range stream.Frames() {
		if !s.sessionActive(id) {
			return
		}
		framesProcessed.Inc()

		if err := sink.Write(frame); err != nil {
			slog.Warn("video sink rejected frame", "seq", frame.Seq, "error", err)
		}

		img, err := frame.Decode()
		if err != nil {
			detectionErrors.Inc()
			slog.Warn("frame decode failed", "seq", frame.Seq, "error", err)
			continue
		}

		matches, err := s.detector.Detect(ctx, img)
		if err != nil {
			detectionErrors.Inc()
			slog.Warn("frame detection failed", "seq", frame.Seq, "error", err)
			continue
		}
		if !s.sessionActive(id) {
			return
		}
		if len(matches) == 0 {
			continue
		}

		// First match wins; additional symbols in the same frame are dropped
		// in backend-reported order.
		results.publish(matches[0].Value)
		valuesDecoded.Inc()
		slog.Debug("barcode decoded",
			"format", matches[0].Format,
			"seq", frame.Seq)
	}
	s.endSession(id, ErrStreamEnded)
}
