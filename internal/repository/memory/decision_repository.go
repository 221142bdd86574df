package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"myFoodFinder/domain"
)

// DecisionRepository keeps decision counters in process memory. Used for
// local runs, the simulator, and tests.
type DecisionRepository struct {
	mu    sync.RWMutex
	stats map[string]domain.DecisionStat
}

func NewDecisionRepository() *DecisionRepository {
	return &DecisionRepository{stats: make(map[string]domain.DecisionStat)}
}

func (r *DecisionRepository) GetStats(ctx context.Context, ids []string) (map[string]domain.DecisionStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.DecisionStat, len(ids))
	for _, id := range ids {
		st, ok := r.stats[id]
		if !ok {
			st = domain.DecisionStat{ID: id}
		}
		out[id] = st
	}
	return out, nil
}

func (r *DecisionRepository) RecordDecision(ctx context.Context, id string, accepted bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.stats[id]
	st.ID = id
	if accepted {
		st.SuccessCount++
	} else {
		st.FailureCount++
	}
	st.UpdatedAt = time.Now()
	r.stats[id] = st
	return nil
}

// Seed overwrites the counters for one id.
func (r *DecisionRepository) Seed(stat domain.DecisionStat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[stat.ID] = stat
}
