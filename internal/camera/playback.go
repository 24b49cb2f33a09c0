package camera

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DriverPlayback replays JPEG files from a directory in a loop. It backs the
// test double variant and lets the scanner run on hosts without a camera.
const DriverPlayback = "playback"

// PlaybackDevice emits a fixed frame sequence at the requested frame rate.
type PlaybackDevice struct {
	mu     sync.Mutex
	frames []Frame
	loop   bool
	live   bool
}

// NewPlayback returns a device replaying the given frames. With loop set the
// sequence repeats until the stream is stopped; otherwise the stream ends
// after the last frame.
func NewPlayback(frames []Frame, loop bool) *PlaybackDevice {
	return &PlaybackDevice{frames: frames, loop: loop}
}

// PlaybackFromDir loads every .jpg/.jpeg file in dir, in name order.
func PlaybackFromDir(dir string) (*PlaybackDevice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("camera: read playback dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("camera: no JPEG frames in %s", dir)
	}
	sort.Strings(names)

	frames := make([]Frame, 0, len(names))
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("camera: read playback frame: %w", err)
		}
		frames = append(frames, Frame{Data: data, Seq: uint64(i + 1), Time: time.Now()})
	}
	return NewPlayback(frames, true), nil
}

func (d *PlaybackDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	d.mu.Lock()
	if d.live {
		d.mu.Unlock()
		return nil, ErrDeviceBusy
	}
	d.live = true
	d.mu.Unlock()

	rate := c.FrameRate
	if rate <= 0 {
		rate = 30
	}
	interval := time.Second / time.Duration(rate)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	frames := make(chan Frame, 2)
	s := &execStream{frames: frames, cancel: cancel}

	go func() {
		defer func() {
			close(frames)
			d.mu.Lock()
			d.live = false
			d.mu.Unlock()
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var seq uint64
		for i := 0; ; i++ {
			if i >= len(d.frames) {
				if !d.loop {
					return
				}
				i = 0
			}
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
			}
			seq++
			f := d.frames[i]
			f.Seq = seq
			f.Time = time.Now()
			select {
			case frames <- f:
			case <-runCtx.Done():
				return
			}
		}
	}()
	return s, nil
}
