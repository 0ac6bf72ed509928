package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/service"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// ScoreCache stores tenant dashboards as JSON strings under esg:scores:<tenant>.
type ScoreCache struct {
	redis   *RedisConnection
	ttl     time.Duration
	metrics service.CacheMetrics
	log     logger.Logger
}

// NewScoreCache creates a Redis-backed dashboard cache. A zero ttl uses the default.
func NewScoreCache(conn *RedisConnection, ttl time.Duration, metrics service.CacheMetrics, log logger.Logger) *ScoreCache {
	if ttl <= 0 {
		ttl = constants.DefaultScoreCacheTTL
	}
	return &ScoreCache{redis: conn, ttl: ttl, metrics: metrics, log: log.WithComponent("score_cache")}
}

func scoreKey(tenantID string) string {
	return constants.ScoreCacheKeyPrefix + tenantID
}

func (c *ScoreCache) Get(ctx context.Context, tenantID string) (*models.Dashboard, error) {
	val, err := c.redis.Client.Get(ctx, scoreKey(tenantID)).Result()
	if err != nil {
		if err == redis.Nil {
			c.record(false)
			return nil, errors.ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: %w", errors.ErrCacheOperation, err)
	}

	var dashboard models.Dashboard
	if err := json.Unmarshal([]byte(val), &dashboard); err != nil {
		c.log.Warn(ctx, "Discarding undecodable cached dashboard", logger.Fields{"tenant_id": tenantID})
		c.record(false)
		return nil, errors.ErrCacheMiss
	}
	c.record(true)
	return &dashboard, nil
}

func (c *ScoreCache) Set(ctx context.Context, dashboard *models.Dashboard) error {
	b, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCacheOperation, err)
	}
	if err := c.redis.Client.Set(ctx, scoreKey(dashboard.TenantID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCacheOperation, err)
	}
	return nil
}

func (c *ScoreCache) Invalidate(ctx context.Context, tenantID string) error {
	if err := c.redis.Client.Del(ctx, scoreKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCacheOperation, err)
	}
	return nil
}

func (c *ScoreCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx)
}

func (c *ScoreCache) record(hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheAccess("redis", hit)
	}
}

var _ service.ScoreCache = (*ScoreCache)(nil)

//Personal.AI order the ending
