package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"myFoodFinder/business/bandit"
	"myFoodFinder/business/recommendation"
	"myFoodFinder/domain"
	"myFoodFinder/internal/repository/memory"
)

// Result summarises one simulated run.
type Result struct {
	Scenario string
	Rounds   int
	BestArm  string
	Accepts  int
	// sum over rounds of (best accept rate - chosen accept rate)
	Regret float64
	Arms   []ArmResult
}

type ArmResult struct {
	ID         string
	AcceptRate float64
	Picks      int
	Accepts    int
	Successes  int64
	Failures   int64
}

// staticFetcher always returns the scenario's arms.
type staticFetcher struct {
	candidates []domain.Candidate
}

func (f staticFetcher) FetchCandidates(ctx context.Context, loc domain.Location, placeTypes []string, radiusMeters int) ([]domain.Candidate, error) {
	out := make([]domain.Candidate, len(f.candidates))
	copy(out, f.candidates)
	return out, nil
}

// Run plays rounds swipes against a Session backed by an in-memory store.
// Each round the user accepts the shown place with its accept rate. Seeds
// fix both the sampler and the simulated user.
func Run(ctx context.Context, s *Scenario, rounds int, seed uint64) (*Result, error) {
	if rounds <= 0 {
		return nil, errors.New("rounds must be positive")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = rand.Uint64()
	}

	store := memory.NewDecisionRepository()
	arms := make(map[string]*ArmResult, len(s.Arms))
	candidates := make([]domain.Candidate, 0, len(s.Arms))
	order := make([]string, 0, len(s.Arms))
	for _, a := range s.Arms {
		store.Seed(domain.DecisionStat{ID: a.ID, SuccessCount: a.Successes, FailureCount: a.Failures})
		candidates = append(candidates, domain.Candidate{ID: a.ID, Name: a.Name})
		arms[a.ID] = &ArmResult{ID: a.ID, AcceptRate: a.AcceptRate}
		order = append(order, a.ID)
	}

	session := recommendation.NewSession(
		recommendation.DefaultConfig(),
		staticFetcher{candidates: candidates},
		store,
		bandit.NewSampler(seed),
		nil,
	)
	user := rand.New(rand.NewPCG(seed, seed+1))

	loc := domain.Location{}
	if err := session.RequestRecommendation(ctx, loc); err != nil {
		return nil, fmt.Errorf("initial recommendation: %w", err)
	}

	best := s.best()
	res := &Result{Scenario: s.Name, Rounds: rounds, BestArm: best.ID}

	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shown := session.State().Recommendation
		if shown == nil {
			return nil, fmt.Errorf("round %d: no recommendation", i)
		}
		arm := arms[shown.ID]
		arm.Picks++
		res.Regret += best.AcceptRate - arm.AcceptRate

		accepted := user.Float64() < arm.AcceptRate
		if accepted {
			arm.Accepts++
			res.Accepts++
		}

		// a rejection re-selects inside OnDecision
		if err := session.OnDecision(ctx, shown.ID, accepted); err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		if accepted {
			if err := session.RequestRecommendation(ctx, loc); err != nil {
				return nil, fmt.Errorf("round %d: %w", i, err)
			}
		}
	}

	stats, err := store.GetStats(ctx, order)
	if err != nil {
		return nil, err
	}
	for _, id := range order {
		a := arms[id]
		a.Successes = stats[id].SuccessCount
		a.Failures = stats[id].FailureCount
		res.Arms = append(res.Arms, *a)
	}

	return res, nil
}
