package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanline_frames_processed_total",
		Help: "Total number of camera frames submitted for detection",
	})

	valuesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanline_values_decoded_total",
		Help: "Total number of decoded barcode values delivered",
	})

	detectionErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanline_detection_errors_total",
		Help: "Total number of per-frame detection failures (non-terminal)",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scanline_active_sessions",
		Help: "Number of currently active scanning sessions (0 or 1)",
	})
)
