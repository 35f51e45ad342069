// Package metrics provides Prometheus instrumentation for the catalog.
//
// All metrics are prefixed with "library_". Counters are package-level
// singletons registered with the default registry, so any package can record
// without plumbing a collector through constructors:
//
//	metrics.RecordAction("borrow", entities.SeverityInfo)
//	metrics.SetCatalogStats(stats)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mrlokans/library/internal/entities"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog metrics
var (
	BookActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_book_actions_total",
			Help: "Catalog actions by action name and resulting message severity",
		},
		[]string{"action", "severity"},
	)

	BooksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_books",
			Help: "Number of books in the catalog at the last listing",
		},
	)

	BooksAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_books_available",
			Help: "Number of available books at the last listing",
		},
	)

	BooksBorrowed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_books_borrowed",
			Help: "Number of borrowed books at the last listing",
		},
	)
)

// Upload metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_uploads_total",
			Help: "Cover uploads by result (accepted, rejected, failed)",
		},
		[]string{"result"},
	)

	OrphanUploadsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_orphan_uploads_removed_total",
			Help: "Unreferenced upload files removed by the cleanup sweep",
		},
	)
)

func RecordAction(action string, severity entities.Severity) {
	BookActionsTotal.WithLabelValues(action, string(severity)).Inc()
}

func SetCatalogStats(stats entities.Stats) {
	BooksTotal.Set(float64(stats.Total))
	BooksAvailable.Set(float64(stats.Available))
	BooksBorrowed.Set(float64(stats.Borrowed))
}

func RecordUpload(result string) {
	UploadsTotal.WithLabelValues(result).Inc()
}

func RecordOrphansRemoved(n int) {
	OrphanUploadsRemoved.Add(float64(n))
}
