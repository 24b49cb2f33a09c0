package scanner

import "github.com/MeKo-Tech/scanline/internal/camera"

// Sink receives every frame of an active session, e.g. for a live preview.
// A sink supplied by the caller is borrowed and never closed by the scanner;
// the internally-created fallback sink is owned and closed on stop.
type Sink interface {
	Write(f camera.Frame) error
	Close() error
}

// discardSink is attached when the caller supplies no sink.
type discardSink struct{}

func (discardSink) Write(camera.Frame) error { return nil }
func (discardSink) Close() error             { return nil }
