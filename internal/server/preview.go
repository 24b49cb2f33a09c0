package server

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sync"

	"github.com/MeKo-Tech/scanline/internal/camera"
)

// previewSink fans session frames out to connected MJPEG preview clients.
// It implements scanner.Sink and is borrowed by the scanner, so the server
// keeps ownership across sessions.
type previewSink struct {
	mu      sync.Mutex
	nextID  uint64
	clients map[uint64]chan camera.Frame
	closed  bool
}

func newPreviewSink() *previewSink {
	return &previewSink{clients: make(map[uint64]chan camera.Frame)}
}

func (p *previewSink) Write(f camera.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.clients {
		select {
		case ch <- f:
		default:
			// Slow client: drop its oldest frame and deliver the newest.
			select {
			case <-ch:
			default:
			}
			ch <- f
		}
	}
	return nil
}

// Close satisfies scanner.Sink. The sink is borrowed, so session teardown
// never calls it; clients are detached by shutdown instead.
func (p *previewSink) Close() error { return nil }

func (p *previewSink) subscribe() (uint64, <-chan camera.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, nil, false
	}
	p.nextID++
	ch := make(chan camera.Frame, 2)
	p.clients[p.nextID] = ch
	return p.nextID, ch, true
}

func (p *previewSink) unsubscribe(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.clients[id]; ok {
		delete(p.clients, id)
		close(ch)
	}
}

func (p *previewSink) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for id, ch := range p.clients {
		delete(p.clients, id)
		close(ch)
	}
}

// previewHandler streams the current session's frames as an MJPEG
// multipart response.
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	id, frames, ok := s.preview.subscribe()
	if !ok {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.preview.unsubscribe(id)

	previewClients.Inc()
	defer previewClients.Dec()

	mimeWriter := multipart.NewWriter(w)
	defer func() { _ = mimeWriter.Close() }()
	w.Header().Set("Content-Type",
		fmt.Sprintf("multipart/x-mixed-replace; boundary=%s", mimeWriter.Boundary()))

	partHeader := make(textproto.MIMEHeader, 1)
	partHeader.Add("Content-Type", "image/jpeg")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, open := <-frames:
			if !open {
				return
			}
			partWriter, err := mimeWriter.CreatePart(partHeader)
			if err != nil {
				slog.Warn("failed to create preview part", "error", err)
				return
			}
			if _, err := partWriter.Write(frame.Data); err != nil {
				return
			}
			if flusher, canFlush := w.(http.Flusher); canFlush {
				flusher.Flush()
			}
		}
	}
}
