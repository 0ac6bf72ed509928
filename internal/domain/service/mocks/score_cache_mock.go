package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/esg/internal/domain/models"
)

// MockScoreCache is a testify mock of service.ScoreCache.
type MockScoreCache struct {
	mock.Mock
}

func (m *MockScoreCache) Get(ctx context.Context, tenantID string) (*models.Dashboard, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func (m *MockScoreCache) Set(ctx context.Context, dashboard *models.Dashboard) error {
	args := m.Called(ctx, dashboard)
	return args.Error(0)
}

func (m *MockScoreCache) Invalidate(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockScoreCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockScoreMetrics is a testify mock of service.ScoreMetrics.
type MockScoreMetrics struct {
	mock.Mock
}

func (m *MockScoreMetrics) RecordScoreRecompute(trigger string, duration time.Duration, err error) {
	m.Called(trigger, duration, err)
}

// MockCacheMetrics is a testify mock of service.CacheMetrics.
type MockCacheMetrics struct {
	mock.Mock
}

func (m *MockCacheMetrics) RecordCacheAccess(cacheType string, hit bool) {
	m.Called(cacheType, hit)
}
