package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"myFoodFinder/business/bandit"
	"myFoodFinder/domain"
	"myFoodFinder/pkg/logger"
)

// Session drives one user's swipe flow: it caches the nearby candidate list,
// refetches it when the user has moved far enough, and picks the next place
// with Thompson sampling over fresh decision stats.
//
// At most one refresh-or-select cycle runs at a time. The candidate cache and
// locations belong to this session alone; the stats store is shared.
type Session struct {
	cfg         Config
	fetcher     CandidateFetcher
	store       DecisionStatsStore
	scorer      bandit.Scorer
	eligChecker EligibilityChecker
	state       *Observable[domain.RecommendationState]

	inFlight atomic.Bool

	mu         sync.Mutex
	candidates []domain.Candidate
	fetchLoc   *domain.Location
	lastLoc    *domain.Location
	cancel     context.CancelFunc
}

func NewSession(
	cfg Config,
	fetcher CandidateFetcher,
	store DecisionStatsStore,
	scorer bandit.Scorer,
	eligChecker EligibilityChecker,
) *Session {
	if eligChecker == nil {
		eligChecker = NoopEligibilityChecker{}
	}
	return &Session{
		cfg:         cfg.withDefaults(),
		fetcher:     fetcher,
		store:       store,
		scorer:      scorer,
		eligChecker: eligChecker,
		state: NewObservable(domain.RecommendationState{
			Status:    domain.SessionIdle,
			UpdatedAt: time.Now(),
		}),
	}
}

// State returns the latest published state.
func (s *Session) State() domain.RecommendationState {
	return s.state.Current()
}

// Subscribe streams state changes, starting with the current one.
func (s *Session) Subscribe() (<-chan domain.RecommendationState, func()) {
	return s.state.Subscribe()
}

// Candidates returns a copy of the cached candidate list.
func (s *Session) Candidates() []domain.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Cancel aborts the in-flight cycle, if any. The single-flight guard is
// released once the aborted cycle unwinds.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// RequestRecommendation runs one refresh-then-select cycle for loc and
// publishes the result. It returns ErrRecommendationInFlight without doing
// anything when another cycle is running. An empty candidate list is not an
// error: the published state simply has no recommendation.
func (s *Session) RequestRecommendation(ctx context.Context, loc domain.Location) error {
	return s.requestRecommendation(ctx, loc, "")
}

// OnDecision records the user's swipe on place id. A rejection triggers a
// new selection over the same cached candidates at the last known location,
// after the decision write has completed. A failed write is surfaced as a
// warning and does not stop the re-selection. When another cycle is already
// running the re-selection is skipped and the decision still succeeds.
func (s *Session) OnDecision(ctx context.Context, id string, accepted bool) error {
	if id == "" {
		return errors.New("place id is required")
	}

	decision := bandit.DecisionReject
	if accepted {
		decision = bandit.DecisionAccept
	}

	var recordErr error
	warning := ""
	if err := s.store.RecordDecision(ctx, id, accepted); err != nil {
		recordErr = fmt.Errorf("%w: %w", ErrRecordFailure, err)
		warning = recordErr.Error()
		DecisionsTotal.WithLabelValues(decision, "error").Inc()
		logger.Warn("record decision failed",
			"trace_id", logger.TraceIDFromContext(ctx),
			"place_id", id,
			"accepted", accepted,
			"error", err,
		)
	} else {
		DecisionsTotal.WithLabelValues(decision, "ok").Inc()
	}

	if accepted {
		s.publishWarning(warning)
		return recordErr
	}

	loc, ok := s.lastLocation()
	if !ok {
		s.publishWarning(warning)
		return recordErr
	}

	err := s.requestRecommendation(ctx, loc, warning)
	if errors.Is(err, ErrRecommendationInFlight) {
		// the decision is stored; the running cycle supplies the next place
		s.publishWarning(warning)
		return recordErr
	}
	return errors.Join(recordErr, err)
}

func (s *Session) requestRecommendation(ctx context.Context, loc domain.Location, warning string) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		RecommendationRequestsTotal.WithLabelValues("ignored").Inc()
		logger.Debug("recommendation request ignored",
			"trace_id", logger.TraceIDFromContext(ctx),
		)
		return ErrRecommendationInFlight
	}
	defer s.inFlight.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.lastLoc = &loc
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}()

	candidates, err := s.candidatesFor(ctx, loc, warning)
	if err != nil {
		s.publishFailure(loc, warning, err)
		return err
	}

	s.publish(domain.RecommendationState{
		Status:         domain.SessionSelecting,
		Loading:        true,
		CandidateCount: len(candidates),
		Location:       &loc,
		Warning:        warning,
	})

	if len(candidates) == 0 {
		RecommendationRequestsTotal.WithLabelValues("empty").Inc()
		s.publish(domain.RecommendationState{
			Status:   domain.SessionIdle,
			Location: &loc,
			Warning:  warning,
		})
		return nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}

	stats, err := s.store.GetStats(ctx, ids)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStatsFailure, err)
		RecommendationRequestsTotal.WithLabelValues("stats_error").Inc()
		s.publishFailure(loc, warning, err)
		return err
	}

	SelectionCandidates.Observe(float64(len(candidates)))
	chosen, ok := bandit.Select(s.scorer, candidates, stats)
	if !ok {
		RecommendationRequestsTotal.WithLabelValues("empty").Inc()
		s.publish(domain.RecommendationState{
			Status:   domain.SessionIdle,
			Location: &loc,
			Warning:  warning,
		})
		return nil
	}

	RecommendationRequestsTotal.WithLabelValues("selected").Inc()
	logger.Debug("recommendation selected",
		"trace_id", logger.TraceIDFromContext(ctx),
		"place_id", chosen.ID,
		"candidate_count", len(candidates),
	)

	s.publish(domain.RecommendationState{
		Status:         domain.SessionIdle,
		Recommendation: &chosen,
		CandidateCount: len(candidates),
		Location:       &loc,
		Warning:        warning,
	})
	return nil
}

// candidatesFor returns the cached list, refetching it first when the cache
// is empty or loc is beyond the refresh distance from the last fetch.
func (s *Session) candidatesFor(ctx context.Context, loc domain.Location, warning string) ([]domain.Candidate, error) {
	s.mu.Lock()
	refresh := len(s.candidates) == 0 || s.fetchLoc == nil ||
		distanceMeters(*s.fetchLoc, loc) > s.cfg.RefreshDistanceMeters
	cached := s.candidates
	s.mu.Unlock()

	if !refresh {
		return cached, nil
	}

	s.publish(domain.RecommendationState{
		Status:   domain.SessionRefreshing,
		Loading:  true,
		Location: &loc,
		Warning:  warning,
	})

	fetched, err := s.fetcher.FetchCandidates(ctx, loc, s.cfg.PlaceTypes, s.cfg.SearchRadiusMeters)
	if err != nil {
		CandidateRefreshTotal.WithLabelValues("error").Inc()
		RecommendationRequestsTotal.WithLabelValues("fetch_error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	CandidateRefreshTotal.WithLabelValues("ok").Inc()

	eligible := make([]domain.Candidate, 0, len(fetched))
	for _, c := range fetched {
		ok, err := s.eligChecker.IsEligible(ctx, c)
		if err != nil {
			logger.Warn("eligibility check failed",
				"trace_id", logger.TraceIDFromContext(ctx),
				"place_id", c.ID,
				"error", err,
			)
			continue
		}
		if ok {
			eligible = append(eligible, c)
		}
	}

	s.mu.Lock()
	s.candidates = eligible
	fetchLoc := loc
	s.fetchLoc = &fetchLoc
	s.mu.Unlock()

	logger.Debug("candidates refreshed",
		"trace_id", logger.TraceIDFromContext(ctx),
		"fetched", len(fetched),
		"eligible", len(eligible),
	)

	return eligible, nil
}

func (s *Session) lastLocation() (domain.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastLoc == nil {
		return domain.Location{}, false
	}
	return *s.lastLoc, true
}

func (s *Session) publish(st domain.RecommendationState) {
	st.UpdatedAt = time.Now()
	if st.Err != nil {
		st.Error = st.Err.Error()
	}
	s.state.Emit(st)
}

func (s *Session) publishFailure(loc domain.Location, warning string, err error) {
	s.mu.Lock()
	count := len(s.candidates)
	s.mu.Unlock()

	s.publish(domain.RecommendationState{
		Status:         domain.SessionIdle,
		CandidateCount: count,
		Location:       &loc,
		Err:            err,
		Warning:        warning,
	})
}

// publishWarning re-emits the current state with a warning attached.
func (s *Session) publishWarning(warning string) {
	if warning == "" {
		return
	}
	s.state.Update(func(st domain.RecommendationState) domain.RecommendationState {
		st.Warning = warning
		st.UpdatedAt = time.Now()
		return st
	})
}
