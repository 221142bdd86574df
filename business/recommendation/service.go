package recommendation

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"myFoodFinder/business/bandit"
	"myFoodFinder/domain"
	"myFoodFinder/pkg/logger"

	"gorm.io/datatypes"
)

// ---- Usecase / Service ----

// RecommendationService owns one Session per user.
type RecommendationService struct {
	fetcher     CandidateFetcher
	statsStore  DecisionStatsStore
	eventRepo   DecisionEventRepository
	eligChecker EligibilityChecker
	cfg         Config

	mu       sync.Mutex
	sessions map[uint]*sessionEntry
}

type sessionEntry struct {
	session  *Session
	lastUsed time.Time
}

func NewRecommendationService(
	fetcher CandidateFetcher,
	statsStore DecisionStatsStore,
	eventRepo DecisionEventRepository,
	eligChecker EligibilityChecker,
	cfg Config,
) *RecommendationService {
	return &RecommendationService{
		fetcher:     fetcher,
		statsStore:  statsStore,
		eventRepo:   eventRepo,
		eligChecker: eligChecker,
		cfg:         cfg.withDefaults(),
		sessions:    make(map[uint]*sessionEntry),
	}
}

// sessionFor returns the user's session, creating it on first use.
func (s *RecommendationService) sessionFor(userID uint) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if entry, ok := s.sessions[userID]; ok {
		entry.lastUsed = now
		return entry.session
	}

	sess := NewSession(s.cfg, s.fetcher, s.statsStore, bandit.NewSampler(sessionSeed(s.cfg.Seed, userID)), s.eligChecker)
	s.sessions[userID] = &sessionEntry{session: sess, lastUsed: now}
	s.capSessionsLocked(userID)
	return sess
}

// sessionSeed derives a per-user seed so that users sharing a configured
// seed still draw independent score streams. 0 stays 0 (random).
func sessionSeed(seed uint64, userID uint) uint64 {
	if seed == 0 {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte("user:" + strconv.FormatUint(uint64(userID), 10)))
	derived := seed ^ h.Sum64()
	if derived == 0 {
		derived = seed
	}
	return derived
}

// debugSeed derives the Explain sampler seed from the user's session seed.
func debugSeed(seed uint64, userID uint) uint64 {
	derived := sessionSeed(seed, userID)
	if derived == 0 {
		return 0
	}
	if d := derived ^ debugSeedSalt; d != 0 {
		return d
	}
	return derived + 1
}

const debugSeedSalt = 0x6a09e667f3bcc909

//  Recommendation / serving

// Recommend runs a recommendation cycle for the user at loc and returns the
// resulting state. ErrRecommendationInFlight is returned together with the
// current state when a cycle is already running.
func (s *RecommendationService) Recommend(
	ctx context.Context,
	userID uint,
	loc domain.Location,
) (domain.RecommendationState, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationState{}, fmt.Errorf("context error: %w", err)
	}

	sess := s.sessionFor(userID)

	logger.Debug("recommend",
		"trace_id", logger.TraceIDFromContext(ctx),
		"user_id", userID,
		"lat", loc.Lat,
		"lng", loc.Lng,
	)

	err := sess.RequestRecommendation(ctx, loc)
	return sess.State(), err
}

//  Feedback / learning

// Decide records an accept/reject swipe. Rejections produce a fresh
// recommendation in the returned state. A failed stats write comes back
// wrapped in ErrRecordFailure alongside a usable state.
func (s *RecommendationService) Decide(
	ctx context.Context,
	userID uint,
	placeID string,
	accepted bool,
) (domain.RecommendationState, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationState{}, fmt.Errorf("context error: %w", err)
	}
	if placeID == "" {
		return domain.RecommendationState{}, errors.New("place_id is required")
	}

	sess := s.sessionFor(userID)
	err := sess.OnDecision(ctx, placeID, accepted)
	state := sess.State()

	logger.Debug("decision",
		"trace_id", logger.TraceIDFromContext(ctx),
		"user_id", userID,
		"place_id", placeID,
		"accepted", accepted,
	)

	s.saveEvent(ctx, userID, placeID, accepted, state)

	return state, err
}

// saveEvent appends the audit row; failures are logged only.
func (s *RecommendationService) saveEvent(ctx context.Context, userID uint, placeID string, accepted bool, state domain.RecommendationState) {
	if s.eventRepo == nil {
		return
	}

	eventCtx := map[string]any{
		"trace_id":   logger.TraceIDFromContext(ctx),
		"event_time": time.Now().Format(time.RFC3339),
	}
	if state.Location != nil {
		eventCtx["lat"] = state.Location.Lat
		eventCtx["lng"] = state.Location.Lng
	}
	if state.Recommendation != nil {
		eventCtx["next_place_id"] = state.Recommendation.ID
	}

	event := domain.DecisionEvent{
		UserID:   userID,
		PlaceID:  placeID,
		Accepted: accepted,
		Context:  datatypes.JSONMap(eventCtx),
	}
	if err := s.eventRepo.SaveEvent(ctx, event); err != nil {
		logger.Error("save decision event failed",
			"trace_id", logger.TraceIDFromContext(ctx),
			"user_id", userID,
			"place_id", placeID,
			"error", err,
		)
	}
}

// Debug explains a selection pass over the user's cached candidates using a
// fresh stats snapshot. It does not publish state.
func (s *RecommendationService) Debug(ctx context.Context, userID uint) ([]domain.DebugRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	sess := s.sessionFor(userID)
	candidates := sess.Candidates()
	if len(candidates) == 0 {
		return []domain.DebugRecommendation{}, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	stats, err := s.statsStore.GetStats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatsFailure, err)
	}

	// separate stream so debug calls never shift the session's selections
	return bandit.Explain(bandit.NewSampler(debugSeed(s.cfg.Seed, userID)), candidates, stats), nil
}

// Subscribe streams the user's session state.
func (s *RecommendationService) Subscribe(userID uint) (<-chan domain.RecommendationState, func()) {
	return s.sessionFor(userID).Subscribe()
}

// Stats reads decision counts for the given place ids.
func (s *RecommendationService) Stats(ctx context.Context, ids []string) (map[string]domain.DecisionStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if len(ids) == 0 {
		return map[string]domain.DecisionStat{}, nil
	}
	return s.statsStore.GetStats(ctx, ids)
}

// CloseSession cancels any in-flight work for the user and drops the session.
func (s *RecommendationService) CloseSession(userID uint) {
	s.mu.Lock()
	entry, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if ok {
		entry.session.Cancel()
	}
}

// Sessions returns the number of live sessions.
func (s *RecommendationService) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
