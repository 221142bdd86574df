package domain

import "time"

const (
	SessionIdle       = "idle"
	SessionRefreshing = "refreshing"
	SessionSelecting  = "selecting"
)

// RecommendationState is the value pushed to session subscribers.
type RecommendationState struct {
	Status         string     `json:"status"`
	Loading        bool       `json:"loading"`
	Recommendation *Candidate `json:"recommendation"`
	CandidateCount int        `json:"candidate_count"`
	Location       *Location  `json:"location,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Err     error  `json:"-"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

