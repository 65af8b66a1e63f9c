package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects and exposes metrics
type Collector struct {
	registry   *prometheus.Registry
	filesTotal *prometheus.CounterVec
	bytesTotal prometheus.Counter
	duration   prometheus.Histogram
}

// New creates a new metrics collector with its own registry
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filebox_files_total",
				Help: "Total number of files processed",
			},
			[]string{"status"},
		),
		bytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "filebox_bytes_total",
				Help: "Total bytes uploaded",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "filebox_upload_duration_seconds",
				Help:    "Time taken to upload a file",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	c.registry.MustRegister(c.filesTotal)
	c.registry.MustRegister(c.bytesTotal)
	c.registry.MustRegister(c.duration)

	return c
}

// IncUploaded increments the uploaded file counter
func (c *Collector) IncUploaded() {
	c.filesTotal.WithLabelValues("uploaded").Inc()
}

// IncSkipped increments the skipped file counter
func (c *Collector) IncSkipped() {
	c.filesTotal.WithLabelValues("skipped").Inc()
}

// IncFailed increments the failed file counter
func (c *Collector) IncFailed() {
	c.filesTotal.WithLabelValues("failed").Inc()
}

// AddBytes adds to total bytes uploaded
func (c *Collector) AddBytes(bytes int64) {
	c.bytesTotal.Add(float64(bytes))
}

// ObserveDuration observes upload duration
func (c *Collector) ObserveDuration(duration time.Duration) {
	c.duration.Observe(duration.Seconds())
}

// Handler returns an HTTP handler exposing this collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// StartServer starts a standalone metrics HTTP server
func (c *Collector) StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return http.ListenAndServe(addr, mux)
}
