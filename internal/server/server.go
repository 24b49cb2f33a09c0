// Package server exposes the scanner over HTTP: a websocket stream of
// decoded values, an MJPEG preview, a symbology listing, health, and
// Prometheus metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/scanline/internal/config"
	"github.com/MeKo-Tech/scanline/internal/scanner"
)

// Server wires the scanner service into an HTTP server.
type Server struct {
	scanner         *scanner.Service
	httpServer      *http.Server
	preview         *previewSink
	corsOrigin      string
	shutdownTimeout time.Duration
}

// New creates a server for the given scanner service.
func New(cfg config.ServerConfig, svc *scanner.Service) *Server {
	s := &Server{
		scanner:         svc,
		preview:         newPreviewSink(),
		corsOrigin:      cfg.CORSOrigin,
		shutdownTimeout: time.Duration(cfg.ShutdownTimeout) * time.Second,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/formats", s.corsMiddleware(s.formatsHandler))
	mux.HandleFunc("/scan/start", s.corsMiddleware(s.startHandler))
	mux.HandleFunc("/scan/stop", s.corsMiddleware(s.stopHandler))
	mux.HandleFunc("/scan/status", s.corsMiddleware(s.statusHandler))
	mux.HandleFunc("/scan/ws", s.scanWebSocketHandler)
	mux.HandleFunc("/preview", s.previewHandler)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start runs the HTTP server until Shutdown or a listener error.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown stops the scanner session and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.scanner.StopScanning()
	s.preview.shutdown()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
