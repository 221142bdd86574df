package recommendation

import "errors"

var (
	// ErrFetchFailure wraps a failed nearby-candidate lookup. The previous
	// candidate list, if any, stays cached.
	ErrFetchFailure = errors.New("candidate fetch failed")

	// ErrStatsFailure wraps a failed decision-stats batch read.
	ErrStatsFailure = errors.New("decision stats lookup failed")

	// ErrRecordFailure wraps a failed decision write. Non-fatal.
	ErrRecordFailure = errors.New("decision record failed")

	// ErrRecommendationInFlight is returned when a request arrives while the
	// session is already refreshing or selecting. The request is dropped.
	ErrRecommendationInFlight = errors.New("recommendation already in flight")
)
