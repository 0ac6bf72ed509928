// Package redis provides Redis connection management and the Redis-backed
// dashboard score cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/esg/internal/config"
	"github.com/turtacn/esg/pkg/logger"
)

// RedisConnection manages Redis client lifecycle and health monitoring.
// A single address yields a standalone client; several addresses a cluster client.
type RedisConnection struct {
	Client redis.UniversalClient
	config *config.RedisConfig
	logger logger.Logger
}

// NewRedisConnection creates a client from configuration and verifies it with a ping.
//
// Parameters:
//   - ctx: Context bounding the initial ping
//   - cfg: Redis configuration
//   - log: Logger instance
func NewRedisConnection(ctx context.Context, cfg *config.RedisConfig, log logger.Logger) (*RedisConnection, error) {
	if cfg == nil || len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("redis addresses not configured")
	}
	log = log.WithComponent("redis")

	opts := &redis.UniversalOptions{
		Addrs:        cfg.Addresses,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	rc := NewRedisConnectionFromClient(redis.NewUniversalClient(opts), cfg, log)

	if err := rc.Ping(ctx); err != nil {
		_ = rc.Client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info(ctx, "Redis connection established successfully", logger.Fields{
		"addresses": cfg.Addresses,
		"pool_size": cfg.PoolSize,
		"db":        cfg.DB,
	})
	return rc, nil
}

// NewRedisConnectionFromClient wraps an existing client.
func NewRedisConnectionFromClient(client redis.UniversalClient, cfg *config.RedisConfig, log logger.Logger) *RedisConnection {
	if cfg == nil {
		cfg = &config.RedisConfig{}
	}
	return &RedisConnection{Client: client, config: cfg, logger: log}
}

// Ping verifies Redis connectivity and warns on slow round trips.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	startTime := time.Now()
	if err := rc.Client.Ping(pingCtx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err)
		return err
	}

	if latency := time.Since(startTime); latency > 50*time.Millisecond {
		rc.logger.Warn(ctx, "High Redis latency detected", logger.Fields{
			"latency_ms":   latency.Milliseconds(),
			"threshold_ms": 50,
		})
	}
	return nil
}

// Close gracefully closes the Redis connection.
func (rc *RedisConnection) Close() error {
	if err := rc.Client.Close(); err != nil {
		rc.logger.Error(context.Background(), "Failed to close Redis connection", err)
		return err
	}
	rc.logger.Info(context.Background(), "Redis connection closed")
	return nil
}

//Personal.AI order the ending
