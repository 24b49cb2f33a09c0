package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Websocket upgrader with reasonable defaults. Origin checks are relaxed;
// the CORS origin applies to the REST surface only.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// scanWebSocketHandler starts (or joins) the scanning session and streams
// decoded values to the client until the session ends or the client leaves.
func (s *Server) scanWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to websocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()
	slog.Info("websocket connection established", "remote_addr", r.RemoteAddr)

	results := s.scanner.StartScanning(r.Context(), s.preview)
	sub := results.Subscribe()
	defer sub.Cancel()

	// Reader goroutine: we expect no client messages, but reading is what
	// surfaces pong frames and client departure.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		_ = conn.SetReadDeadline(time.Now().Add(2 * wsPingInterval))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(2 * wsPingInterval))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-clientGone:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case value, ok := <-sub.Values():
			if !ok {
				event := ScanEvent{Type: "done"}
				if err := sub.Err(); err != nil {
					event = ScanEvent{Type: "error", Error: err.Error()}
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				_ = conn.WriteJSON(event)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ScanEvent{Type: "result", Value: value}); err != nil {
				slog.Warn("websocket write failed", "error", err)
				return
			}
		}
	}
}
