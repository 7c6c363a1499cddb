// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SuggestRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_suggest_requests_total",
		Help: "Place searches by result source (cache, network, fallback, short, rate_limited)",
	}, []string{"source"})
	SuggestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aqimap_suggest_duration_ms",
		Help:    "Place search duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000, 2500, 5000},
	})
	ProxyFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_geocode_proxy_failures_total",
		Help: "Geocoding proxy failures by proxy",
	}, []string{"proxy"})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aqimap_provider_requests_total",
		Help: "Air-quality provider calls by provider and outcome",
	}, []string{"provider", "status"})
	ProviderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aqimap_provider_duration_ms",
		Help:    "Air-quality provider call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 15000},
	}, []string{"provider"})
)

func init() {
	prometheus.MustRegister(SuggestRequestsTotal)
	prometheus.MustRegister(SuggestDurationMs)
	prometheus.MustRegister(ProxyFailuresTotal)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderDurationMs)
}

// Handler exposes the registered collectors
func Handler() http.Handler { return promhttp.Handler() }
