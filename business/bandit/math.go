package bandit

import "math"

// PosteriorParams applies add-one smoothing to the observed counts:
// an untried place gets the uniform Beta(1,1) prior.
func PosteriorParams(successCount, failureCount int64) (alpha, beta float64) {
	if successCount < 0 {
		successCount = 0
	}
	if failureCount < 0 {
		failureCount = 0
	}
	return 1 + float64(successCount), 1 + float64(failureCount)
}

// PosteriorMean is the expected acceptance rate α/(α+β).
func PosteriorMean(successCount, failureCount int64) float64 {
	a, b := PosteriorParams(successCount, failureCount)
	return a / (a + b)
}

// gammaRatio returns g1/(g1+g2) and false when the pair is unusable
// (both draws underflowed to zero, or a non-finite value slipped through).
func gammaRatio(g1, g2 float64) (float64, bool) {
	sum := g1 + g2
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, false
	}
	r := g1 / sum
	if r < 0 {
		r = 0
	} else if r > 1 {
		r = 1
	}
	return r, true
}
