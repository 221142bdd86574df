package bandit

import "myFoodFinder/domain"

// Explain runs one selection pass and returns every candidate's posterior
// components alongside its sampled score, in input order.
func Explain(scorer Scorer, candidates []domain.Candidate, stats map[string]domain.DecisionStat) []domain.DebugRecommendation {
	out := make([]domain.DebugRecommendation, 0, len(candidates))
	bestIdx := -1

	for i, c := range candidates {
		st := stats[c.ID]
		alpha, beta := PosteriorParams(st.SuccessCount, st.FailureCount)
		sample := scorer.Sample(st.SuccessCount, st.FailureCount)

		out = append(out, domain.DebugRecommendation{
			PlaceID:       c.ID,
			Name:          c.Name,
			SuccessCount:  st.SuccessCount,
			FailureCount:  st.FailureCount,
			Alpha:         alpha,
			Beta:          beta,
			PosteriorMean: alpha / (alpha + beta),
			Sample:        sample,
		})

		if bestIdx < 0 || sample > out[bestIdx].Sample {
			bestIdx = i
		}
	}

	if bestIdx >= 0 {
		out[bestIdx].Selected = true
	}
	return out
}
