package domain

type DebugRecommendation struct {
	PlaceID       string  `json:"place_id"`
	Name          string  `json:"name"`
	SuccessCount  int64   `json:"success_count"`
	FailureCount  int64   `json:"failure_count"`
	Alpha         float64 `json:"alpha"`          // 1 + successes
	Beta          float64 `json:"beta"`           // 1 + failures
	PosteriorMean float64 `json:"posterior_mean"` // α/(α+β)
	Sample        float64 `json:"sample"`         // this pass's Thompson draw
	Selected      bool    `json:"selected"`
}
