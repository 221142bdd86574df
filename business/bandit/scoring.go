package bandit

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// maxDegenerateRedraws bounds how often a zero-sum Gamma pair is redrawn
// before falling back to the posterior mean.
const maxDegenerateRedraws = 8

// Scorer draws one Thompson score for a place's decision counts.
type Scorer interface {
	Sample(successCount, failureCount int64) float64
}

// Sampler draws Beta(1+s, 1+f) variates as the ratio of two independent
// Gamma(shape, 1) draws. It owns its random generator so that a fixed
// seed reproduces the same sequence of scores. Safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ Scorer = (*Sampler)(nil)

// NewSampler returns a sampler seeded with seed, or with a random seed
// when seed is 0.
func NewSampler(seed uint64) *Sampler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Sampler{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Sample returns a value in [0, 1].
func (s *Sampler) Sample(successCount, failureCount int64) float64 {
	alpha, beta := PosteriorParams(successCount, failureCount)

	s.mu.Lock()
	defer s.mu.Unlock()

	g1 := distuv.Gamma{Alpha: alpha, Beta: 1, Src: s.rng}
	g2 := distuv.Gamma{Alpha: beta, Beta: 1, Src: s.rng}

	for range maxDegenerateRedraws {
		if r, ok := gammaRatio(g1.Rand(), g2.Rand()); ok {
			return r
		}
	}
	return alpha / (alpha + beta)
}
