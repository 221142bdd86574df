package main

import (
	"context"
	"path/filepath"
	"testing"

	"myFoodFinder/internal/repository/memory"
	"myFoodFinder/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStatsBackend_Memory(t *testing.T) {
	cfg := &config.Config{Stats: config.StatsConfig{Backend: config.StatsBackendMemory}}

	b, err := openStatsBackend(context.Background(), cfg)
	require.NoError(t, err)
	defer b.close()

	assert.IsType(t, &memory.DecisionRepository{}, b.stats)
	assert.Nil(t, b.events)
}

func TestOpenStatsBackend_SQLite(t *testing.T) {
	cfg := &config.Config{
		Stats:  config.StatsConfig{Backend: config.StatsBackendSQLite, EventLog: true},
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "stats.db")},
	}

	b, err := openStatsBackend(context.Background(), cfg)
	require.NoError(t, err)
	defer b.close()

	ctx := context.Background()
	require.NoError(t, b.stats.RecordDecision(ctx, "p1", true))
	stats, err := b.stats.GetStats(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["p1"].SuccessCount)
	assert.NotNil(t, b.events)
}

func TestOpenStatsBackend_Unknown(t *testing.T) {
	_, err := openStatsBackend(context.Background(), &config.Config{Stats: config.StatsConfig{Backend: "etcd"}})
	assert.Error(t, err)
}
