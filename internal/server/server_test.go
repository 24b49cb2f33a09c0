package server_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scanline/internal/camera"
	"github.com/MeKo-Tech/scanline/internal/config"
	"github.com/MeKo-Tech/scanline/internal/scanner"
	"github.com/MeKo-Tech/scanline/internal/server"
	"github.com/MeKo-Tech/scanline/internal/testutil"
)

func newTestServer(t *testing.T, value string) (*server.Server, *scanner.Service) {
	t.Helper()
	frames := []camera.Frame{
		{Data: testutil.JPEG(t, testutil.QRFrame(t, value, 320, 240))},
	}
	cfg := scanner.DefaultConfig()
	cfg.Device = camera.NewPlayback(frames, true)
	cfg.Constraints.FrameRate = 100
	svc := scanner.New(cfg)

	srv := server.New(config.DefaultConfig().Server, svc)
	t.Cleanup(svc.StopScanning)
	return srv, svc
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "x")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var health server.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
}

func TestFormatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "x")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/formats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var formats server.FormatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &formats))
	assert.Contains(t, formats.Formats, "qr_code")
	assert.Contains(t, formats.Display, "QR Code")
	assert.Equal(t, len(formats.Formats), formats.Count)
}

func TestFormatsEndpointRejectsPost(t *testing.T) {
	srv, _ := newTestServer(t, "x")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/formats", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStartStopStatus(t *testing.T) {
	srv, svc := newTestServer(t, "x")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scan/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.Active())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scan/status", nil))
	var status server.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Supported)
	assert.True(t, status.Active)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scan/stop", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.Active())
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, "x")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/formats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketStreamsDecodedValues(t *testing.T) {
	srv, _ := newTestServer(t, "ws-value")

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/scan/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var event server.ScanEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "result", event.Type)
	assert.Equal(t, "ws-value", event.Value)
}

func TestPreviewStreamsMJPEGParts(t *testing.T) {
	srv, svc := newTestServer(t, "preview")

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// An active session feeds the preview sink.
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scan/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, svc.Active())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/preview", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Contains(t, resp.Header.Get("Content-Type"), "multipart/x-mixed-replace")

	reader := bufio.NewReader(resp.Body)
	found := false
	for range 64 {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.Contains(line, "image/jpeg") {
			found = true
			break
		}
	}
	assert.True(t, found, "no JPEG part header seen in preview stream")
}
