package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiktok",
			Subsystem: "downloader",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tiktok",
			Subsystem: "downloader",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 120, 600},
		},
		[]string{"method", "endpoint"},
	)

	// Extractor invocation counters, labelled by invocation mode and
	// outcome ("success" or the lowercased failure kind)
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiktok",
			Subsystem: "downloader",
			Name:      "extractions_total",
			Help:      "Total extractor invocations",
		},
		[]string{"mode", "outcome"},
	)

	// Extractor invocation duration
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tiktok",
			Subsystem: "downloader",
			Name:      "extraction_duration_seconds",
			Help:      "Extractor invocation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"mode"},
	)

	// In-flight extractor subprocesses
	ActiveExtractions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tiktok",
			Subsystem: "downloader",
			Name:      "active_extractions",
			Help:      "Number of extractor subprocesses currently running",
		},
	)

	// Scratch files reaped by the janitor
	ScratchPurgesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiktok",
			Subsystem: "downloader",
			Name:      "scratch_purges_total",
			Help:      "Total expired scratch files removed by the janitor",
		},
	)

	// Bytes streamed back to clients by the download endpoint
	DownloadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiktok",
			Subsystem: "downloader",
			Name:      "download_bytes_total",
			Help:      "Total bytes of converted media streamed to clients",
		},
		[]string{"type"},
	)
)

// RecordRequest records a completed HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordExtraction records a concluded extractor invocation
func RecordExtraction(mode, outcome string, durationSec float64) {
	ExtractionsTotal.WithLabelValues(mode, outcome).Inc()
	ExtractionDuration.WithLabelValues(mode).Observe(durationSec)
}

// RecordScratchPurge records janitor removals
func RecordScratchPurge(count int) {
	ScratchPurgesTotal.Add(float64(count))
}

// RecordDownloadBytes records the size of a streamed media file
func RecordDownloadBytes(mediaType string, bytes int64) {
	DownloadBytesTotal.WithLabelValues(mediaType).Add(float64(bytes))
}
