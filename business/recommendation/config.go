package recommendation

import (
	"context"
	"time"

	"myFoodFinder/domain"
)

type Config struct {
	// candidates are refetched once the user is further than this from
	// where the cached list was fetched
	RefreshDistanceMeters float64
	SearchRadiusMeters    int
	PlaceTypes            []string
	// 0 seeds every session randomly
	Seed uint64

	// sessions unused for longer than this are dropped by PruneIdle
	SessionIdleTTL time.Duration
	// hard cap on live sessions; least recently used idle ones go first
	MaxSessions int
}

const (
	defaultRefreshDistanceMeters = 1000.0
	defaultSearchRadiusMeters    = 1500
	defaultSessionIdleTTL        = 30 * time.Minute
	defaultMaxSessions           = 10000
)

func DefaultConfig() Config {
	return Config{
		RefreshDistanceMeters: defaultRefreshDistanceMeters,
		SearchRadiusMeters:    defaultSearchRadiusMeters,
		PlaceTypes:            []string{"restaurant"},
		SessionIdleTTL:        defaultSessionIdleTTL,
		MaxSessions:           defaultMaxSessions,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RefreshDistanceMeters <= 0 {
		c.RefreshDistanceMeters = d.RefreshDistanceMeters
	}
	if c.SearchRadiusMeters <= 0 {
		c.SearchRadiusMeters = d.SearchRadiusMeters
	}
	if len(c.PlaceTypes) == 0 {
		c.PlaceTypes = d.PlaceTypes
	}
	if c.SessionIdleTTL <= 0 {
		c.SessionIdleTTL = d.SessionIdleTTL
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = d.MaxSessions
	}
	return c
}

// ---- Collaborator interfaces ----

// CandidateFetcher looks up nearby places. May block on the network.
type CandidateFetcher interface {
	FetchCandidates(ctx context.Context, loc domain.Location, placeTypes []string, radiusMeters int) ([]domain.Candidate, error)
}

// DecisionStatsStore is the shared per-place accept/reject counter store.
// GetStats returns an entry for every requested id, zero counts when the
// place has no history. RecordDecision increments exactly one counter
// atomically, creating the record if needed.
type DecisionStatsStore interface {
	GetStats(ctx context.Context, ids []string) (map[string]domain.DecisionStat, error)
	RecordDecision(ctx context.Context, id string, accepted bool) error
}

// DecisionEventRepository is the optional append-only audit log.
type DecisionEventRepository interface {
	SaveEvent(ctx context.Context, event domain.DecisionEvent) error
}
