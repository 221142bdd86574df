package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"myFoodFinder/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func openTestRepo(t *testing.T) *DecisionRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	repo, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.RecordDecision(context.Background(), "a", true))
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	defer repo.Close()

	stats, err := repo.GetStats(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["a"].SuccessCount)
}

func TestGetStats_MissingIDsAreZero(t *testing.T) {
	repo := openTestRepo(t)

	stats, err := repo.GetStats(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.DecisionStat{ID: "x"}, stats["x"])

	stats, err = repo.GetStats(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestRecordDecision_Upsert(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.RecordDecision(ctx, "a", false))
	require.NoError(t, repo.RecordDecision(ctx, "a", false))
	require.NoError(t, repo.RecordDecision(ctx, "a", true))
	require.NoError(t, repo.RecordDecision(ctx, "b", true))

	stats, err := repo.GetStats(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["a"].SuccessCount)
	assert.Equal(t, int64(2), stats["a"].FailureCount)
	assert.False(t, stats["a"].UpdatedAt.IsZero())
	assert.Equal(t, int64(1), stats["b"].SuccessCount)
	assert.Zero(t, stats["c"].SuccessCount+stats["c"].FailureCount)
}

func TestRecordDecision_Concurrent(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.RecordDecision(ctx, "a", false))
		}()
	}
	wg.Wait()

	stats, err := repo.GetStats(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats["a"].FailureCount)
}

func TestSaveEvent(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveEvent(ctx, domain.DecisionEvent{
		UserID:   3,
		PlaceID:  "a",
		Accepted: true,
		Context:  datatypes.JSONMap{"lat": -6.2},
	}))
	require.NoError(t, repo.SaveEvent(ctx, domain.DecisionEvent{UserID: 3, PlaceID: "b"}))

	n, err := repo.CountEvents(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCancelledContext(t *testing.T) {
	repo := openTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.RecordDecision(ctx, "a", true), context.Canceled)
	_, err := repo.GetStats(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}
