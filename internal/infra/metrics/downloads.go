package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		downloadsTotal,
		downloadDuration,
		downloadFileSize,
		downloadsInFlight,
		poolRejectedTotal,
		scratchFilesRemovedTotal,
	)
}

// Download results used as label values.
const (
	ResultOK             = "ok"
	ResultTooLong        = "too_long"
	ResultTooLarge       = "too_large"
	ResultDownloadFailed = "download_failed"
	ResultExtraction     = "extraction_error"
	ResultBusy           = "busy"
	ResultError          = "error"
)

var (
	downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloads_total",
			Help: "URL requests processed, labeled by outcome.",
		},
		[]string{"result"},
	)

	downloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "download_duration_seconds",
			Help:    "Time spent per request stage.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"stage"}, // fetch | upload
	)

	downloadFileSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "download_file_size_bytes",
			Help:    "Size of files delivered to users.",
			Buckets: prometheus.ExponentialBuckets(256*1024, 2, 9), // 256KiB .. 64MiB
		},
	)

	downloadsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "downloads_in_flight",
			Help: "Requests currently between progress message and cleanup.",
		},
	)

	poolRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "download_pool_rejected_total",
			Help: "Requests turned away because the download queue was full.",
		},
	)

	scratchFilesRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scratch_files_removed_total",
			Help: "Orphaned files removed from the download directory by the janitor.",
		},
	)
)

func IncDownload(result string) {
	downloadsTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveStage(stage string, d time.Duration) {
	downloadDuration.WithLabelValues(norm(stage)).Observe(d.Seconds())
}

func ObserveFileSize(bytes int64) {
	downloadFileSize.Observe(float64(bytes))
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement.
func TrackInFlight() func() {
	downloadsInFlight.Inc()
	return downloadsInFlight.Dec
}

func IncPoolRejected() {
	poolRejectedTotal.Inc()
}

func AddScratchFilesRemoved(n int) {
	scratchFilesRemovedTotal.Add(float64(n))
}
