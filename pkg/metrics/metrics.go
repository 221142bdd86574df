package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendation HTTP handlers, by route
	RecommendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommendation_http_latency_seconds",
		Help:    "Latency of recommendation handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// Total number of recommendation HTTP requests, by route and status code
	RecommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_http_requests_total",
		Help: "Total number of recommendation HTTP requests",
	}, []string{"route", "code"})

	// Calls made to the places directory, by result
	PlacesRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "places_requests_total",
		Help: "Nearby search calls to the places API",
	}, []string{"result"})

	// Open websocket state streams
	StreamConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recommendation_stream_connections",
		Help: "Open recommendation state streams",
	})
)

func init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendRequests,
		PlacesRequests,
		StreamConnections,
	)
}
