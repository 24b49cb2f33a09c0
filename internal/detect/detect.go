// Package detect provides a pluggable interface for per-frame barcode
// detection. Backends register themselves by name; the native gozxing
// backend is registered by default.
package detect

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/MeKo-Tech/scanline/internal/symbology"
)

// ErrNoBackend indicates that no decoder backend matches the requested name.
var ErrNoBackend = errors.New("detect: no decoder backend available")

// Config controls backend construction and decoding behavior.
type Config struct {
	// Backend selects the registered backend by name. Empty selects the
	// default backend.
	Backend string

	// Formats constrains the set of symbologies to search. Empty means all
	// symbologies the backend supports.
	Formats []symbology.ID

	// TryHarder enables more exhaustive search (slower but more robust).
	TryHarder bool

	// MaxImageSize downscales frames whose longest side exceeds this value
	// before decoding. Zero disables downscaling.
	MaxImageSize int
}

// DefaultConfig returns the default detection config.
func DefaultConfig() Config {
	return Config{Backend: DefaultBackend, MaxImageSize: 1280}
}

// Point is an integer point in image coordinates.
type Point struct {
	X int
	Y int
}

// Match represents one decoded barcode within a frame. Matches are reported
// in backend order; callers relying on a single result take the first.
type Match struct {
	Format symbology.ID
	Value  string
	Points []Point // corner or key points if available
}

// Detector is a pluggable barcode decoder implementation. Detect reports
// zero or more matches in the frame; Formats reports every symbology the
// backend can decode, independent of the configured constraint set.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Match, error)
	Formats(ctx context.Context) ([]symbology.ID, error)
}

// Factory constructs a Detector from a config.
type Factory func(Config) (Detector, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available under the given name. Backends register
// from their file's init; a duplicate name panics to surface wiring mistakes
// at startup.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("detect: duplicate backend %q", name))
	}
	registry[name] = f
}

// Available returns the sorted names of all registered backends.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs a Detector for cfg.Backend. It returns ErrNoBackend when no
// backend is registered under that name.
func New(cfg Config) (Detector, error) {
	name := cfg.Backend
	if name == "" {
		name = DefaultBackend
	}
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrNoBackend, name, Available())
	}
	return f(cfg)
}
