package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanline_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scanline_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scanline_websocket_connections",
			Help: "Number of active websocket result-stream connections",
		},
	)

	previewClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scanline_preview_clients",
			Help: "Number of connected MJPEG preview clients",
		},
	)
)
