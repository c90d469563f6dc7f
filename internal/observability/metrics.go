// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Load metrics
	LoadsTotal      *prometheus.CounterVec
	LoadDuration    prometheus.Histogram
	TripsIndexed    prometheus.Gauge
	StationsLoaded  prometheus.Gauge
	RowsSkipped     prometheus.Gauge
	TripsRejected   prometheus.Gauge
	LastSuccessLoad prometheus.Gauge

	// Aggregation metrics
	AggregationsTotal  prometheus.Counter
	AggregationLatency prometheus.Histogram
	CacheLookups       *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
	WSSessions   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "bikeshare"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		LoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "loads_total",
			Help:      "Total number of dataset loads by status",
		}, []string{"status"}),
		LoadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "load_duration_seconds",
			Help:      "Dataset load duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		TripsIndexed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "trips_indexed",
			Help:      "Number of trips in the current minute index",
		}),
		StationsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "stations_loaded",
			Help:      "Number of stations in the current dataset",
		}),
		RowsSkipped: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "rows_skipped",
			Help:      "Trip rows skipped during the last load",
		}),
		TripsRejected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "trips_rejected",
			Help:      "Trips left out of the index during the last load",
		}),
		LastSuccessLoad: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_load_timestamp",
			Help:      "Unix timestamp of last successful dataset load",
		}),

		AggregationsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "traffic",
			Name:      "aggregations_total",
			Help:      "Total number of station traffic aggregation passes",
		}),
		AggregationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "traffic",
			Name:      "aggregation_latency_seconds",
			Help:      "Station traffic aggregation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "traffic",
			Name:      "cache_lookups_total",
			Help:      "Traffic cache lookups by result",
		}, []string{"result"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		WSSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "websocket_sessions",
			Help:      "Number of open slider WebSocket sessions",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordLoad records the outcome of a dataset load.
func RecordLoad(duration time.Duration, err error) {
	if err != nil {
		DefaultMetrics.LoadsTotal.WithLabelValues("error").Inc()
		return
	}
	DefaultMetrics.LoadsTotal.WithLabelValues("ok").Inc()
	DefaultMetrics.LoadDuration.Observe(duration.Seconds())
	DefaultMetrics.LastSuccessLoad.Set(float64(time.Now().Unix()))
}

// UpdateDataset updates the dataset size gauges.
func UpdateDataset(stations, trips, skipped, rejected int) {
	DefaultMetrics.StationsLoaded.Set(float64(stations))
	DefaultMetrics.TripsIndexed.Set(float64(trips))
	DefaultMetrics.RowsSkipped.Set(float64(skipped))
	DefaultMetrics.TripsRejected.Set(float64(rejected))
}

// RecordAggregation records one aggregation pass.
func RecordAggregation(duration time.Duration) {
	DefaultMetrics.AggregationsTotal.Inc()
	DefaultMetrics.AggregationLatency.Observe(duration.Seconds())
}

// RecordCacheLookup records a traffic cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		DefaultMetrics.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	DefaultMetrics.CacheLookups.WithLabelValues("miss").Inc()
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(route string, status int, duration time.Duration) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
	DefaultMetrics.HTTPLatency.WithLabelValues(route).Observe(duration.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
