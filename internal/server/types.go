package server

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// FormatsResponse is the /formats payload.
type FormatsResponse struct {
	Formats []string `json:"formats"`
	Display string   `json:"display"`
	Count   int      `json:"count"`
}

// StatusResponse is the /scan/status payload.
type StatusResponse struct {
	Supported bool `json:"supported"`
	Active    bool `json:"active"`
}

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ScanEvent is one websocket message on /scan/ws.
type ScanEvent struct {
	Type  string `json:"type"` // "result", "error", or "done"
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}
