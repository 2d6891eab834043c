// Package metrics exposes Prometheus collectors for detection, collection and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the process collectors. Each Recorder owns its registry so
// tests can build as many as they like.
type Recorder struct {
	registry     *prometheus.Registry
	detections   *prometheus.CounterVec
	scanDuration prometheus.Histogram
	fetchErrors  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	httpDuration *prometheus.HistogramVec
}

// New creates a Recorder with a fresh registry that also carries the Go and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		detections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cupsentinel_detections_total",
				Help: "Detection runs by ticker and verdict",
			},
			[]string{"ticker", "detected"},
		),
		scanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cupsentinel_scan_duration_seconds",
				Help:    "Duration of a single pattern detection",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		fetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cupsentinel_fetch_errors_total",
				Help: "Failed quote or history fetches by data source",
			},
			[]string{"source"},
		),
		lastPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cupsentinel_last_price",
				Help: "Last collected price for a ticker",
			},
			[]string{"ticker"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cupsentinel_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
	}
}

// RecordDetection counts one detection run and observes its latency.
func (r *Recorder) RecordDetection(ticker string, detected bool, elapsed time.Duration) {
	r.detections.WithLabelValues(ticker, strconv.FormatBool(detected)).Inc()
	r.scanDuration.Observe(elapsed.Seconds())
}

// RecordFetchError counts a failed fetch for a source.
func (r *Recorder) RecordFetchError(source string) {
	r.fetchErrors.WithLabelValues(source).Inc()
}

// RecordLastPrice records the last price for a ticker.
func (r *Recorder) RecordLastPrice(ticker string, price float64) {
	r.lastPrice.WithLabelValues(ticker).Set(price)
}

// RecordHTTP observes one served request. Route should be the templated path.
func (r *Recorder) RecordHTTP(method, route string, status int, elapsed time.Duration) {
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
