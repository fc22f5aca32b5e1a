// Package observability provides Prometheus metrics for the application.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "waketube"

// Metrics holds all application metrics.
type Metrics struct {
	// Pinger metrics
	VisitsTotal     *prometheus.CounterVec
	VisitDuration   prometheus.Histogram
	IterationsTotal prometheus.Counter
	WeblistURLs     prometheus.Gauge

	// Extractor metrics
	InfoRequestsTotal *prometheus.CounterVec

	// Download metrics
	DownloadsStarted    prometheus.Counter
	DownloadsCompleted  prometheus.Counter
	DownloadsFailed     prometheus.Counter
	DownloadsInProgress prometheus.Gauge
	DownloadBytes       prometheus.Counter
	DownloadDuration    prometheus.Histogram

	// Session storage metrics
	SessionsCurrent      prometheus.Gauge
	CleanupSessionsTotal prometheus.Counter
	CleanupDirsTotal     prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec
}

// New creates and registers all application metrics.
func New() *Metrics {
	return &Metrics{
		VisitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinger",
			Name:      "visits_total",
			Help:      "Total number of page visits by outcome",
		}, []string{"outcome"}),
		VisitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pinger",
			Name:      "visit_duration_seconds",
			Help:      "Histogram of page visit duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		IterationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinger",
			Name:      "iterations_total",
			Help:      "Total number of visitor loop iterations",
		}),
		WeblistURLs: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pinger",
			Name:      "weblist_urls",
			Help:      "Number of URLs read from the weblist on the last iteration",
		}),

		InfoRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extractor",
			Name:      "info_requests_total",
			Help:      "Total number of metadata fetches by status",
		}, []string{"status"}),

		DownloadsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "started_total",
			Help:      "Total number of downloads started",
		}),
		DownloadsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "completed_total",
			Help:      "Total number of downloads completed successfully",
		}),
		DownloadsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "failed_total",
			Help:      "Total number of downloads that failed",
		}),
		DownloadsInProgress: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "in_progress",
			Help:      "Number of downloads currently in progress",
		}),
		DownloadBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "bytes_total",
			Help:      "Total bytes downloaded",
		}),
		DownloadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "downloads",
			Name:      "duration_seconds",
			Help:      "Histogram of download duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		SessionsCurrent: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "current",
			Help:      "Current number of stored sessions",
		}),
		CleanupSessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "cleanup_total",
			Help:      "Total number of expired sessions cleaned up",
		}),
		CleanupDirsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "cleanup_dirs_total",
			Help:      "Total number of leftover temp directories removed",
		}),

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPResponseSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "Histogram of HTTP response sizes in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}, []string{"method", "path"}),
	}
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordVisit records one page visit.
func (m *Metrics) RecordVisit(outcome string, duration time.Duration) {
	if m == nil {
		return
	}

	m.VisitsTotal.WithLabelValues(outcome).Inc()
	m.VisitDuration.Observe(duration.Seconds())
}

// RecordIteration records one visitor loop iteration.
func (m *Metrics) RecordIteration(urls int) {
	if m == nil {
		return
	}

	m.IterationsTotal.Inc()
	m.WeblistURLs.Set(float64(urls))
}

// RecordInfoRequest records a metadata fetch by status.
func (m *Metrics) RecordInfoRequest(status string) {
	if m == nil {
		return
	}

	m.InfoRequestsTotal.WithLabelValues(status).Inc()
}

// RecordDownloadStarted increments the started counter and the in-progress gauge.
func (m *Metrics) RecordDownloadStarted() {
	if m == nil {
		return
	}

	m.DownloadsStarted.Inc()
	m.DownloadsInProgress.Inc()
}

// RecordDownloadCompleted records a finished download.
func (m *Metrics) RecordDownloadCompleted(bytes int64) {
	if m == nil {
		return
	}

	m.DownloadsCompleted.Inc()
	m.DownloadsInProgress.Dec()
	m.DownloadBytes.Add(float64(bytes))
}

// RecordDownloadFailed records a failed download.
func (m *Metrics) RecordDownloadFailed() {
	if m == nil {
		return
	}

	m.DownloadsFailed.Inc()
	m.DownloadsInProgress.Dec()
}

// DownloadTimer returns a function to record download duration.
func (m *Metrics) DownloadTimer() func() {
	if m == nil {
		return func() {}
	}

	start := time.Now()

	return func() {
		m.DownloadDuration.Observe(time.Since(start).Seconds())
	}
}

// RecordCleanup records session cleanup metrics.
func (m *Metrics) RecordCleanup(sessions, dirs int) {
	if m == nil {
		return
	}

	m.CleanupSessionsTotal.Add(float64(sessions))
	m.CleanupDirsTotal.Add(float64(dirs))
}

// SetStoredSessions sets the number of stored sessions.
func (m *Metrics) SetStoredSessions(count int) {
	if m == nil {
		return
	}

	m.SessionsCurrent.Set(float64(count))
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration, size int) {
	if m == nil {
		return
	}

	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(size))
}
