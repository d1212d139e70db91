// Package metrics holds the Prometheus collectors of the handover service.
//
// Collectors live on a private registry created once per process.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Load outcomes
const (
	LoadFound     = "found"
	LoadEmpty     = "empty"
	LoadMalformed = "malformed"
)

// Export outcomes
const (
	ExportSuccess   = "success"
	ExportCancelled = "cancelled"
	ExportFailed    = "failed"
	ExportBusy      = "busy"
)

// Metrics holds every collector the service records into
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ReportLoadsTotal *prometheus.CounterVec
	ReportSavesTotal *prometheus.CounterVec
	ExportsTotal     *prometheus.CounterVec
	ExportDuration   prometheus.Histogram
	BackupsTotal     *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide collectors, creating them on first use
func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "handover_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "handover_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ReportLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "handover_report_loads_total",
				Help: "Report loads by outcome",
			},
			[]string{"result"}, // found, empty, malformed
		),
		ReportSavesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "handover_report_saves_total",
				Help: "Report saves by outcome",
			},
			[]string{"result"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "handover_exports_total",
				Help: "Slide deck exports by outcome",
			},
			[]string{"result"},
		),
		ExportDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "handover_export_duration_seconds",
				Help:    "Time spent rendering and writing a slide deck",
				Buckets: prometheus.DefBuckets,
			},
		),
		BackupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "handover_backups_total",
				Help: "Store backups by outcome",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReportLoadsTotal,
		m.ReportSavesTotal,
		m.ExportsTotal,
		m.ExportDuration,
		m.BackupsTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveExport records the outcome and duration of one export attempt
func (m *Metrics) ObserveExport(result string, d time.Duration) {
	m.ExportsTotal.WithLabelValues(result).Inc()
	if result != ExportBusy {
		m.ExportDuration.Observe(d.Seconds())
	}
}
