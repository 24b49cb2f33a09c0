package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// formatsHandler lists the symbologies the detection capability supports.
func (s *Server) formatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ids := s.scanner.SupportedFormats(r.Context())
	formats := make([]string, len(ids))
	for i, id := range ids {
		formats[i] = string(id)
	}
	s.writeJSON(w, http.StatusOK, FormatsResponse{
		Formats: formats,
		Display: s.scanner.FormattedSupportedFormats(r.Context()),
		Count:   len(formats),
	})
}

// startHandler begins a scanning session bound to the preview sink.
func (s *Server) startHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	results := s.scanner.StartScanning(r.Context(), s.preview)
	if results.Done() {
		if err := results.Err(); err != nil {
			s.writeError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Supported: s.scanner.Supported(),
		Active:    s.scanner.Active(),
	})
}

// stopHandler ends the current scanning session, if any.
func (s *Server) stopHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.scanner.StopScanning()
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Supported: s.scanner.Supported(),
		Active:    s.scanner.Active(),
	})
}

// statusHandler reports capability and session state.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Supported: s.scanner.Supported(),
		Active:    s.scanner.Active(),
	})
}
