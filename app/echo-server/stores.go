package main

import (
	"context"
	"fmt"

	"myFoodFinder/business/recommendation"
	"myFoodFinder/internal/repository/memory"
	psqlRepo "myFoodFinder/internal/repository/postgres"
	redisRepo "myFoodFinder/internal/repository/redis"
	sqliteRepo "myFoodFinder/internal/repository/sqlite"
	"myFoodFinder/pkg/config"
	"myFoodFinder/pkg/database"
	redisClient "myFoodFinder/pkg/database/redis"
	"myFoodFinder/pkg/logger"
)

type statsBackend struct {
	stats  recommendation.DecisionStatsStore
	events recommendation.DecisionEventRepository
	close  func()
}

// openStatsBackend connects the decision store selected by STATS_BACKEND.
func openStatsBackend(ctx context.Context, cfg *config.Config) (*statsBackend, error) {
	switch cfg.Stats.Backend {
	case config.StatsBackendPostgres:
		db, err := database.InitPostgres(cfg)
		if err != nil {
			return nil, err
		}
		repo := psqlRepo.NewDecisionRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = database.ClosePostgres(db)
			return nil, err
		}
		b := &statsBackend{
			stats: repo,
			close: func() {
				if err := database.ClosePostgres(db); err != nil {
					logger.Error("Failed to close database", "error", err)
				}
			},
		}
		if cfg.Stats.EventLog {
			b.events = repo
		}
		logger.Info("Database connected successfully")
		return b, nil

	case config.StatsBackendRedis:
		client, err := redisClient.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &statsBackend{
			stats: redisRepo.NewDecisionRepository(client, cfg.Redis.KeyPrefix),
			close: func() {
				if err := redisClient.CloseRedisClient(client); err != nil {
					logger.Error("Failed to close redis", "error", err)
				}
			},
		}, nil

	case config.StatsBackendSQLite:
		repo, err := sqliteRepo.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		b := &statsBackend{
			stats: repo,
			close: func() {
				if err := repo.Close(); err != nil {
					logger.Error("Failed to close sqlite", "error", err)
				}
			},
		}
		if cfg.Stats.EventLog {
			b.events = repo
		}
		logger.Info("SQLite opened", "path", cfg.SQLite.Path)
		return b, nil

	case config.StatsBackendMemory:
		logger.Warn("Using in-memory decision stats; counts are lost on restart")
		return &statsBackend{
			stats: memory.NewDecisionRepository(),
			close: func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown stats backend: %s", cfg.Stats.Backend)
	}
}
