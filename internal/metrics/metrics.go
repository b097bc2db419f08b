// Package metrics exposes Prometheus collectors for the HTTP surface and
// the two orchestrators.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tubegrab"

// Outcome label value for successful operations. Failures use the error kind name.
const OutcomeSuccess = "success"

// Metrics holds every collector registered by the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	lookups          *prometheus.CounterVec
	downloads        *prometheus.CounterVec
	downloadDuration prometheus.Histogram
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total number of HTTP requests"},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
			[]string{"route", "method"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "video_lookups_total", Help: "Total number of video metadata lookups"},
			[]string{"outcome"},
		),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "downloads_total", Help: "Total number of video downloads"},
			[]string{"outcome"},
		),
		downloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Namespace: namespace, Name: "download_duration_seconds", Help: "Wall time of video downloads",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800}},
		),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.lookups,
		m.downloads,
		m.downloadDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveLookup records one metadata lookup.
func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
}

// ObserveDownload records one download attempt.
func (m *Metrics) ObserveDownload(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.downloads.WithLabelValues(outcome).Inc()
	m.downloadDuration.Observe(d.Seconds())
}
