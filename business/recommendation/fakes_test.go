package recommendation

import (
	"context"
	"sync"

	"myFoodFinder/domain"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	lastLoc domain.Location
	result  []domain.Candidate
	err     error

	// when set, FetchCandidates signals started and waits for release or ctx
	started chan struct{}
	release chan struct{}
}

func (f *fakeFetcher) FetchCandidates(ctx context.Context, loc domain.Location, placeTypes []string, radiusMeters int) ([]domain.Candidate, error) {
	f.mu.Lock()
	f.calls++
	f.lastLoc = loc
	result, err := f.result, f.err
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	out := make([]domain.Candidate, len(result))
	copy(out, result)
	return out, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) set(result []domain.Candidate, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result, f.err = result, err
}

type fakeStore struct {
	mu        sync.Mutex
	stats     map[string]domain.DecisionStat
	getErr    error
	recordErr error
	getCalls  int
	order     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{stats: make(map[string]domain.DecisionStat)}
}

func (s *fakeStore) GetStats(ctx context.Context, ids []string) (map[string]domain.DecisionStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	s.order = append(s.order, "get")
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make(map[string]domain.DecisionStat, len(ids))
	for _, id := range ids {
		st := s.stats[id]
		st.ID = id
		out[id] = st
	}
	return out, nil
}

func (s *fakeStore) RecordDecision(ctx context.Context, id string, accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, "record")
	if s.recordErr != nil {
		return s.recordErr
	}
	st := s.stats[id]
	st.ID = id
	if accepted {
		st.SuccessCount++
	} else {
		st.FailureCount++
	}
	s.stats[id] = st
	return nil
}

func (s *fakeStore) stat(id string) domain.DecisionStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats[id]
}

func (s *fakeStore) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// meanScorer scores by posterior mean so selections are deterministic.
type meanScorer struct{}

func (meanScorer) Sample(successCount, failureCount int64) float64 {
	return float64(successCount+1) / float64(successCount+failureCount+2)
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.DecisionEvent
	err    error
}

func (r *fakeEventRepo) SaveEvent(ctx context.Context, event domain.DecisionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) saved() []domain.DecisionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.DecisionEvent, len(r.events))
	copy(out, r.events)
	return out
}

func places(ids ...string) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Candidate{ID: id, Name: "place " + id})
	}
	return out
}
