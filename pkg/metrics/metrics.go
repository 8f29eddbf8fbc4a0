package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration prometheus.Histogram
	VideosCollectedTotal    *prometheus.CounterVec
	CommentsCollectedTotal  prometheus.Counter
	BatchDuration           prometheus.Histogram
	JournalErrorsTotal      *prometheus.CounterVec
}

// New registers the metrics with reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_requests_total",
				Help: "Total number of comment page requests sent upstream.",
			},
			[]string{"outcome"}, // ok, timeout, connection_failure, http_status, other
		),
		UpstreamRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Duration of upstream comment page requests.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		VideosCollectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "videos_collected_total",
				Help: "Total number of video collections by outcome.",
			},
			[]string{"status"}, // success, failure
		),
		CommentsCollectedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "comments_collected_total",
				Help: "Total number of normalized comments returned.",
			},
		),
		BatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "batch_duration_seconds",
				Help:    "Duration of batch comment collections.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		JournalErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failure_journal_errors_total",
				Help: "Total number of failure journal writes that did not succeed.",
			},
			[]string{"store"},
		),
	}
}
