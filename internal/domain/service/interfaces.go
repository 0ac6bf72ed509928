// Package service holds the domain services of the ESG compliance service and
// the ports they and the application layer depend on.
package service

//go:generate mockery --name AuditService --output mocks --outpkg mocks
//go:generate mockery --name ScoreCache --output mocks --outpkg mocks

import (
	"context"

	"github.com/turtacn/esg/internal/domain/models"
)

// AuditService records committed lifecycle mutations.
// AuditService 记录已提交的生命周期变更事件。
type AuditService interface {
	// LogEvent writes one audit event to the configured sink.
	LogEvent(ctx context.Context, event models.AuditEvent) error
}

// ScoreCache stores dashboard read models keyed by tenant.
// ScoreCache 按租户缓存仪表盘评分。
type ScoreCache interface {
	// Get returns the cached dashboard or errors.ErrCacheMiss.
	Get(ctx context.Context, tenantID string) (*models.Dashboard, error)

	// Set stores the dashboard for the configured TTL.
	Set(ctx context.Context, dashboard *models.Dashboard) error

	// Invalidate drops the cached dashboard of a tenant.
	Invalidate(ctx context.Context, tenantID string) error

	// Ping checks the cache backend is reachable.
	Ping(ctx context.Context) error
}
