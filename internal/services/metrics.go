package services

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream call outcomes
const (
	OutcomeSuccess        = "success"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
	OutcomeConfigError    = "config_error"
)

// MetricsService owns a private Prometheus registry. A nil *MetricsService is valid and
// records nothing.
type MetricsService struct {
	registry          *prometheus.Registry
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  prometheus.Histogram
	documentsDecoded  *prometheus.CounterVec
	certificateExpiry prometheus.Gauge
}

// NewMetricsService creates the gateway collectors plus the Go and process collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsService{
		registry: registry,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfse_gateway_http_requests_total",
				Help: "Total HTTP requests handled by the gateway",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nfse_gateway_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfse_gateway_upstream_requests_total",
				Help: "Calls to the NFS-e distribution API by outcome",
			},
			[]string{"outcome"},
		),
		upstreamDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nfse_gateway_upstream_request_duration_seconds",
				Help:    "Latency of calls to the NFS-e distribution API",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		documentsDecoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfse_gateway_documents_decoded_total",
				Help: "Document resolutions by decoding strategy (none = miss)",
			},
			[]string{"strategy"},
		),
		certificateExpiry: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nfse_gateway_certificate_expiry_timestamp_seconds",
				Help: "NotAfter of the client certificate as a Unix timestamp",
			},
		),
	}
}

// RecordRequest records an inbound HTTP request.
func (m *MetricsService) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpstream records one call to the distribution API.
func (m *MetricsService) RecordUpstream(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(outcome).Inc()
	if outcome != OutcomeConfigError {
		m.upstreamDuration.Observe(duration.Seconds())
	}
}

// RecordDecode records which strategy resolved a document.
func (m *MetricsService) RecordDecode(strategy string) {
	if m == nil {
		return
	}
	m.documentsDecoded.WithLabelValues(strategy).Inc()
}

// SetCertificateExpiry publishes the client certificate expiry.
func (m *MetricsService) SetCertificateExpiry(notAfter time.Time) {
	if m == nil {
		return
	}
	m.certificateExpiry.Set(float64(notAfter.Unix()))
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}
