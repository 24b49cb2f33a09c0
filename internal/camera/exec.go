package camera

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"
)

// ErrDeviceBusy is returned when a stream is requested while another one is
// still live on the same device.
var ErrDeviceBusy = errors.New("camera: device already acquired")

// commandSpec renders the capture command line for a set of constraints.
type commandSpec func(c Constraints) (name string, args []string)

// execDevice captures MJPEG frames from a child process writing to stdout.
type execDevice struct {
	mu   sync.Mutex
	spec commandSpec
	live bool
}

func newExecDevice(spec commandSpec) *execDevice {
	return &execDevice{spec: spec}
}

func (d *execDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	d.mu.Lock()
	if d.live {
		d.mu.Unlock()
		return nil, ErrDeviceBusy
	}
	d.live = true
	d.mu.Unlock()

	name, args := d.spec(c)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	cmd := exec.Command(name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		d.release()
		return nil, fmt.Errorf("camera: open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		d.release()
		return nil, fmt.Errorf("camera: start %s: %w", name, err)
	}

	frames := make(chan Frame, 2)
	s := &execStream{frames: frames, cancel: cancel}
	go d.readFrames(runCtx, cmd, stdout, c, frames)
	return s, nil
}

func (d *execDevice) release() {
	d.mu.Lock()
	d.live = false
	d.mu.Unlock()
}

// readFrames splits the child's stdout into JPEG frames and fans them into
// the stream channel, dropping the oldest frame when the consumer lags.
func (d *execDevice) readFrames(ctx context.Context, cmd *exec.Cmd, stdout io.ReadCloser, c Constraints, frames chan Frame) {
	defer func() {
		d.stopProcess(cmd, stdout)
		close(frames)
		d.release()
	}()

	scanner := newFrameScanner(stdout, c)

	var seq uint64
	for {
		if ctx.Err() != nil {
			return
		}
		if !scanner.Scan() {
			err := scanner.Err()
			if err == nil {
				return
			}
			if !errors.Is(err, bufio.ErrTooLong) {
				slog.Warn("camera stream read failed", "error", err)
				return
			}
			// An oversized frame kills the scanner for good (Scan stays
			// false once Err is set), so resync with a fresh one over the
			// remaining stdout. The buffered garbage is dropped with it.
			slog.Warn("camera frame exceeded buffer, resyncing", "error", err)
			scanner = newFrameScanner(stdout, c)
			continue
		}

		data := scanner.Bytes()
		// Trim resync garbage ahead of the JPEG header; a token without one
		// is not a frame at all.
		if i := bytes.Index(data, jpegHeader); i > 0 {
			data = data[i:]
		} else if i < 0 {
			continue
		}

		// The scanner reuses its buffer for the next frame, so the bytes
		// handed to consumers must be a copy.
		seq++
		frame := Frame{Data: bytes.Clone(data), Seq: seq, Time: time.Now()}
		select {
		case frames <- frame:
		default:
			// Consumer is slow: drop the oldest buffered frame. Buffer size 2
			// protects against deadlock when consumer and dropper read at once.
			select {
			case <-frames:
			default:
			}
			frames <- frame
		}
	}
}

// newFrameScanner builds an MJPEG frame scanner sized for the requested
// resolution, capped at 4k frames.
func newFrameScanner(r io.Reader, c Constraints) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, c.Width*c.Height*3), 3840*2160*3)
	sc.Split(mjpegSplitFunc)
	return sc
}

func (d *execDevice) stopProcess(cmd *exec.Cmd, stdout io.ReadCloser) {
	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		slog.Warn("failed to interrupt capture process", "error", err)
		if err := cmd.Process.Kill(); err != nil {
			slog.Warn("failed to kill capture process", "error", err)
		}
	}
	// Flush stdout so Wait can finish.
	_, _ = io.Copy(io.Discard, stdout)
	if err := cmd.Wait(); err != nil {
		slog.Debug("capture process exited", "error", err)
	}
}

// execStream is the single-consumer stream over an exec-backed capture.
type execStream struct {
	frames   chan Frame
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func (s *execStream) Frames() <-chan Frame { return s.frames }

func (s *execStream) Stop() {
	s.stopOnce.Do(s.cancel)
}

func rpicamCommand(cfg Config) commandSpec {
	name := cfg.Command
	if name == "" {
		name = "rpicam-vid"
	}
	return func(c Constraints) (string, []string) {
		args := []string{
			"--timeout", "0", // run until explicitly stopped
			"--width", strconv.Itoa(c.Width),
			"--height", strconv.Itoa(c.Height),
			"--framerate", strconv.Itoa(c.FrameRate),
			"--nopreview",
			"--codec", "mjpeg",
			"--flush",
			"--output", "-",
		}
		if c.Facing == FacingFront {
			args = append(args, "--camera", "1")
		}
		return name, args
	}
}

func ffmpegCommand(cfg Config) commandSpec {
	name := cfg.Command
	if name == "" {
		name = "ffmpeg"
	}
	return func(c Constraints) (string, []string) {
		device := c.DevicePath
		if device == "" {
			device = cfg.DevicePath
		}
		if device == "" {
			device = "/dev/video0"
		}
		return name, []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "v4l2",
			"-framerate", strconv.Itoa(c.FrameRate),
			"-video_size", fmt.Sprintf("%dx%d", c.Width, c.Height),
			"-i", device,
			"-f", "mjpeg",
			"-q:v", "5",
			"-",
		}
	}
}
