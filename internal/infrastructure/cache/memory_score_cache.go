// Package cache provides the in-process dashboard score cache.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/service"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/errors"
)

// MemoryScoreCache keeps dashboards in process memory with per-entry expiry.
// Entries are stored by value so callers cannot mutate cached state.
type MemoryScoreCache struct {
	store   *gocache.Cache
	metrics service.CacheMetrics
}

// NewMemoryScoreCache creates an in-memory cache. A zero ttl uses the default.
func NewMemoryScoreCache(ttl time.Duration, metrics service.CacheMetrics) *MemoryScoreCache {
	if ttl <= 0 {
		ttl = constants.DefaultScoreCacheTTL
	}
	return &MemoryScoreCache{
		store:   gocache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *MemoryScoreCache) Get(ctx context.Context, tenantID string) (*models.Dashboard, error) {
	v, ok := c.store.Get(constants.ScoreCacheKeyPrefix + tenantID)
	if !ok {
		c.record(false)
		return nil, errors.ErrCacheMiss
	}
	c.record(true)
	dashboard := v.(models.Dashboard)
	return &dashboard, nil
}

func (c *MemoryScoreCache) Set(ctx context.Context, dashboard *models.Dashboard) error {
	c.store.SetDefault(constants.ScoreCacheKeyPrefix+dashboard.TenantID, *dashboard)
	return nil
}

func (c *MemoryScoreCache) Invalidate(ctx context.Context, tenantID string) error {
	c.store.Delete(constants.ScoreCacheKeyPrefix + tenantID)
	return nil
}

// Ping always succeeds for the in-process cache.
func (c *MemoryScoreCache) Ping(ctx context.Context) error {
	return nil
}

func (c *MemoryScoreCache) record(hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheAccess("memory", hit)
	}
}

var _ service.ScoreCache = (*MemoryScoreCache)(nil)
