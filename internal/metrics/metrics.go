// Package metrics exposes Prometheus collectors for the search service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "korloc_requests_total",
		Help: "Total API requests by endpoint",
	}, []string{"endpoint"})
	EmptyResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "korloc_empty_results_total",
		Help: "Total API responses with no location, by endpoint",
	}, []string{"endpoint"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "korloc_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
	}, []string{"endpoint"})
	BuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "korloc_index_builds_total",
		Help: "Index builds by outcome",
	}, []string{"outcome"})
	BuildDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "korloc_index_build_duration_ms",
		Help:    "Index build duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
	})
	IndexedLocations = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "korloc_indexed_locations",
		Help: "Locations in the last successfully built index",
	})
	NearestCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "korloc_nearest_cache_hits_total",
		Help: "Nearest-place cache hits",
	})
	NearestCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "korloc_nearest_cache_misses_total",
		Help: "Nearest-place cache misses",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(BuildsTotal)
	prometheus.MustRegister(BuildDurationMs)
	prometheus.MustRegister(IndexedLocations)
	prometheus.MustRegister(NearestCacheHitsTotal)
	prometheus.MustRegister(NearestCacheMissesTotal)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Observe records one API request.
func Observe(endpoint string, d time.Duration, empty bool) {
	RequestsTotal.WithLabelValues(endpoint).Inc()
	RequestDurationMs.WithLabelValues(endpoint).Observe(float64(d.Microseconds()) / 1000)
	if empty {
		EmptyResultsTotal.WithLabelValues(endpoint).Inc()
	}
}

// BuildObserver records index builds. It satisfies korloc.BuildObserver.
type BuildObserver struct{}

// ObserveBuild records the outcome of one build.
func (BuildObserver) ObserveBuild(d time.Duration, entries int, err error) {
	BuildDurationMs.Observe(float64(d.Microseconds()) / 1000)
	if err != nil {
		BuildsTotal.WithLabelValues("error").Inc()
		return
	}
	BuildsTotal.WithLabelValues("ok").Inc()
	IndexedLocations.Set(float64(entries))
}
