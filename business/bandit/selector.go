package bandit

import "myFoodFinder/domain"

// Select scores every candidate with one posterior draw and returns the
// highest scoring one. Places without a stat entry score from the (0,0)
// prior. On an exact tie the earlier candidate wins. Returns false for an
// empty list.
func Select(scorer Scorer, candidates []domain.Candidate, stats map[string]domain.DecisionStat) (domain.Candidate, bool) {
	if len(candidates) == 0 {
		return domain.Candidate{}, false
	}

	bestIdx := -1
	bestScore := 0.0
	for i, c := range candidates {
		st := stats[c.ID]
		score := scorer.Sample(st.SuccessCount, st.FailureCount)
		if bestIdx < 0 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	return candidates[bestIdx], true
}
