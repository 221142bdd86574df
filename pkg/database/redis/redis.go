package redis

import (
	"context"
	"fmt"
	"time"

	"myFoodFinder/pkg/config"
	"myFoodFinder/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// NewRedisClient connects the decision stats client and pings it within
// connectTimeout of ctx.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", cfg.Redis.RedisHost, cfg.Redis.RedisPort)

	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   cfg.Redis.RedisPassword,
		DB:         cfg.Redis.RedisDB,
		ClientName: cfg.App.Name,
		DialTimeout:  connectTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Info("Redis connected",
		"addr", addr,
		"db", cfg.Redis.RedisDB,
		"key_prefix", cfg.Redis.KeyPrefix,
	)
	return client, nil
}

// CloseRedisClient closes the Redis connection
func CloseRedisClient(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
