package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ScrapeJobsTotal     *prometheus.CounterVec
	ScrapeDuration      *prometheus.HistogramVec
	JobsInQueue         prometheus.Gauge
	CacheOpsTotal       *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all metrics against the given registerer so tests can use
// an isolated registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		ScrapeJobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scrape_jobs_total",
			Help: "Total number of scrape job deliveries by outcome.",
		}, []string{"type", "status"}), // status: completed, failed, buried
		ScrapeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scrape_duration_seconds",
			Help:    "Duration of scrape job processing.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		}, []string{"type"}),
		JobsInQueue: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scrape_jobs_in_queue",
			Help: "Current number of jobs on the ready list.",
		}),
		CacheOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_ops_total",
			Help: "Cache operations by kind and result.",
		}, []string{"op", "result"}), // op: get/set/del/invalidate, result: hit/miss/ok/error
	}
}
