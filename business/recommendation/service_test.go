//go:build !integration

package recommendation

import (
	"context"
	"errors"
	"testing"

	"myFoodFinder/domain"
	"myFoodFinder/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(fetcher *fakeFetcher, store *fakeStore, events *fakeEventRepo) *RecommendationService {
	cfg := DefaultConfig()
	cfg.Seed = 7
	svc := NewRecommendationService(fetcher, store, events, nil, cfg)
	return svc
}

func TestService_RecommendReturnsState(t *testing.T) {
	svc := newTestService(&fakeFetcher{result: places("a", "b")}, newFakeStore(), &fakeEventRepo{})

	st, err := svc.Recommend(context.Background(), 1, home)
	require.NoError(t, err)
	require.NotNil(t, st.Recommendation)
	assert.Equal(t, 2, st.CandidateCount)
	assert.Equal(t, 1, svc.Sessions())
}

func TestService_SessionsArePerUser(t *testing.T) {
	fetcher := &fakeFetcher{result: places("a")}
	svc := newTestService(fetcher, newFakeStore(), &fakeEventRepo{})
	ctx := context.Background()

	_, err := svc.Recommend(ctx, 1, home)
	require.NoError(t, err)
	_, err = svc.Recommend(ctx, 2, home)
	require.NoError(t, err)

	// each user owns a candidate cache
	assert.Equal(t, 2, fetcher.Calls())
	assert.Equal(t, 2, svc.Sessions())
}

func TestService_StatsAreSharedAcrossUsers(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(&fakeFetcher{result: places("a", "b")}, store, &fakeEventRepo{})
	ctx := context.Background()

	_, err := svc.Recommend(ctx, 1, home)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, 1, "a", true)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, 2, "a", false)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["a"].SuccessCount)
	assert.Equal(t, int64(1), stats["a"].FailureCount)
	assert.Zero(t, stats["b"].SuccessCount+stats["b"].FailureCount)
}

func TestService_DecideSavesEvent(t *testing.T) {
	events := &fakeEventRepo{}
	svc := newTestService(&fakeFetcher{result: places("a", "b")}, newFakeStore(), events)
	ctx := logger.ContextWithTraceID(context.Background(), "trace-1")

	_, err := svc.Recommend(ctx, 9, home)
	require.NoError(t, err)
	st, err := svc.Decide(ctx, 9, "a", false)
	require.NoError(t, err)

	saved := events.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, uint(9), saved[0].UserID)
	assert.Equal(t, "a", saved[0].PlaceID)
	assert.False(t, saved[0].Accepted)
	assert.Equal(t, "trace-1", saved[0].Context["trace_id"])
	assert.Equal(t, home.Lat, saved[0].Context["lat"])
	require.NotNil(t, st.Recommendation)
	assert.Equal(t, st.Recommendation.ID, saved[0].Context["next_place_id"])
}

func TestService_EventFailureIsNotFatal(t *testing.T) {
	events := &fakeEventRepo{err: errors.New("db down")}
	svc := newTestService(&fakeFetcher{result: places("a")}, newFakeStore(), events)

	_, err := svc.Decide(context.Background(), 1, "a", true)
	assert.NoError(t, err)
}

func TestService_NilEventRepo(t *testing.T) {
	svc := NewRecommendationService(&fakeFetcher{}, newFakeStore(), nil, nil, DefaultConfig())
	_, err := svc.Decide(context.Background(), 1, "a", true)
	assert.NoError(t, err)
}

func TestService_DecideValidation(t *testing.T) {
	svc := newTestService(&fakeFetcher{}, newFakeStore(), &fakeEventRepo{})

	_, err := svc.Decide(context.Background(), 1, "", true)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Decide(ctx, 1, "a", true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_DebugExplainsCachedCandidates(t *testing.T) {
	store := newFakeStore()
	store.stats["b"] = domain.DecisionStat{ID: "b", SuccessCount: 3, FailureCount: 1}
	svc := newTestService(&fakeFetcher{result: places("a", "b")}, store, &fakeEventRepo{})
	ctx := context.Background()

	rows, err := svc.Debug(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = svc.Recommend(ctx, 1, home)
	require.NoError(t, err)

	rows, err = svc.Debug(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[1].PlaceID)
	assert.Equal(t, 4.0, rows[1].Alpha)
	assert.Equal(t, 2.0, rows[1].Beta)

	selected := 0
	for _, r := range rows {
		if r.Selected {
			selected++
		}
	}
	assert.Equal(t, 1, selected)
}

func TestService_DebugStatsFailure(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(&fakeFetcher{result: places("a")}, store, &fakeEventRepo{})
	ctx := context.Background()

	_, err := svc.Recommend(ctx, 1, home)
	require.NoError(t, err)

	store.getErr = errors.New("timeout")
	_, err = svc.Debug(ctx, 1)
	assert.ErrorIs(t, err, ErrStatsFailure)
}

func TestService_CloseSessionDropsState(t *testing.T) {
	fetcher := &fakeFetcher{result: places("a")}
	svc := newTestService(fetcher, newFakeStore(), &fakeEventRepo{})
	ctx := context.Background()

	_, err := svc.Recommend(ctx, 1, home)
	require.NoError(t, err)

	svc.CloseSession(1)
	svc.CloseSession(1)
	assert.Equal(t, 0, svc.Sessions())

	_, err = svc.Recommend(ctx, 1, home)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.Calls())
}

func TestService_StatsEmptyIDs(t *testing.T) {
	svc := newTestService(&fakeFetcher{}, newFakeStore(), &fakeEventRepo{})
	stats, err := svc.Stats(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestSessionSeed(t *testing.T) {
	assert.Equal(t, uint64(0), sessionSeed(0, 5))
	assert.Equal(t, sessionSeed(42, 5), sessionSeed(42, 5))
	assert.NotEqual(t, sessionSeed(42, 5), sessionSeed(42, 6))
	assert.NotEqual(t, uint64(0), sessionSeed(42, 5))
}

func TestService_DecideDuringInFlightRecommendSucceeds(t *testing.T) {
	fetcher := &fakeFetcher{
		result:  places("a", "b"),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := newFakeStore()
	events := &fakeEventRepo{}
	svc := newTestService(fetcher, store, events)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Recommend(ctx, 1, home)
		done <- err
	}()
	<-fetcher.started

	_, err := svc.Decide(ctx, 1, "a", false)
	require.NoError(t, err)

	close(fetcher.release)
	require.NoError(t, <-done)

	assert.Equal(t, int64(1), store.stat("a").FailureCount)
	assert.Len(t, events.saved(), 1)
}

func TestService_DebugDoesNotShiftSelections(t *testing.T) {
	run := func(withDebug bool) []string {
		svc := newTestService(&fakeFetcher{result: places("a", "b", "c", "d")}, newFakeStore(), &fakeEventRepo{})
		ctx := context.Background()

		st, err := svc.Recommend(ctx, 3, home)
		require.NoError(t, err)

		var picks []string
		for i := 0; i < 8; i++ {
			require.NotNil(t, st.Recommendation)
			picks = append(picks, st.Recommendation.ID)
			if withDebug {
				_, err := svc.Debug(ctx, 3)
				require.NoError(t, err)
			}
			st, err = svc.Decide(ctx, 3, st.Recommendation.ID, false)
			require.NoError(t, err)
		}
		return picks
	}

	assert.Equal(t, run(false), run(true))
}

func TestDebugSeed(t *testing.T) {
	assert.Equal(t, uint64(0), debugSeed(0, 5))
	assert.Equal(t, debugSeed(42, 5), debugSeed(42, 5))
	assert.NotEqual(t, sessionSeed(42, 5), debugSeed(42, 5))
	assert.NotEqual(t, uint64(0), debugSeed(42, 5))
}
