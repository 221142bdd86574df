package recommendation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Recommendation cycles by outcome (selected, empty, fetch_error, stats_error, ignored).",
		},
		[]string{"outcome"},
	)

	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_decisions_total",
			Help: "Swipe decisions recorded, by decision and store result.",
		},
		[]string{"decision", "result"},
	)

	CandidateRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_candidate_refresh_total",
			Help: "Nearby candidate refetches by result.",
		},
		[]string{"result"},
	)

	SessionsEvictedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_sessions_evicted_total",
			Help: "Per-user sessions dropped, by reason (idle, capacity).",
		},
		[]string{"reason"},
	)

	SelectionCandidates = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_selection_candidates",
		Help:    "Number of candidates scored per selection pass.",
		Buckets: []float64{0, 1, 5, 10, 20, 40, 60, 100},
	})
)

func init() {
	prometheus.MustRegister(
		RecommendationRequestsTotal,
		DecisionsTotal,
		CandidateRefreshTotal,
		SessionsEvictedTotal,
		SelectionCandidates,
	)
}
