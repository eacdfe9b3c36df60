package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the dashboard backend.
type Metrics struct {
	// Indicator engine metrics
	IndicatorComputeDur *prometheus.HistogramVec // labels: indicator
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter

	// Dataset refresh metrics
	RefreshTotal  *prometheus.CounterVec // labels: result=success|failure
	RefreshDur    prometheus.Histogram
	BarsLoaded    prometheus.Gauge
	LastRefreshTS prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec // labels: route, code
	WSClients    prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all metrics on a private registry together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		IndicatorComputeDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_indicator_compute_duration_seconds",
			Help:    "Indicator compute latency over the filtered bar series",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"indicator"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_indicator_cache_hits_total",
			Help: "Indicator results served from the result cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_indicator_cache_misses_total",
			Help: "Indicator results computed because the cache had no entry",
		}),

		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_refresh_total",
			Help: "Dataset refresh attempts by result",
		}, []string{"result"}),
		RefreshDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_refresh_duration_seconds",
			Help:    "Time spent loading bars during a refresh",
			Buckets: prometheus.DefBuckets,
		}),
		BarsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_bars_loaded",
			Help: "Number of bars in the current dataset snapshot",
		}),
		LastRefreshTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		}),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),

		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.IndicatorComputeDur,
		m.CacheHits,
		m.CacheMisses,
		m.RefreshTotal,
		m.RefreshDur,
		m.BarsLoaded,
		m.LastRefreshTS,
		m.HTTPRequests,
		m.WSClients,
	)

	return m
}

// Registry exposes the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
