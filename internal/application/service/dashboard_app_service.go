package service

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// DashboardAppService serves the tenant's scores and progress.
// DashboardAppService 仪表盘评分查询服务。
type DashboardAppService interface {
	// GetScores returns the persisted scores and progress of a tenant.
	GetScores(ctx context.Context, tenantID string) (*dto.ScoresResponse, error)
}

type dashboardAppServiceImpl struct {
	deps   Dependencies
	group  singleflight.Group
	logger logger.Logger
}

// NewDashboardAppService creates the dashboard read service. Reads go through
// deps.Cache when it is set; concurrent misses for one tenant share a single
// database read.
func NewDashboardAppService(deps Dependencies) DashboardAppService {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &dashboardAppServiceImpl{deps: deps, logger: log.WithComponent("dashboard_app_service")}
}

func (s *dashboardAppServiceImpl) GetScores(ctx context.Context, tenantID string) (*dto.ScoresResponse, error) {
	if s.deps.Cache != nil {
		dashboard, err := s.deps.Cache.Get(ctx, tenantID)
		if err == nil {
			resp := dto.NewScoresResponse(dashboard)
			return &resp, nil
		}
		if !errors.Is(err, errors.ErrCacheMiss) {
			s.logger.Warn(ctx, "Score cache read failed, falling back to database", logger.Fields{
				"tenant_id": tenantID,
				"error":     err.Error(),
			})
		}
	}

	v, err, shared := s.group.Do(tenantID, func() (interface{}, error) {
		return s.load(ctx, tenantID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load scores")
	}
	if shared {
		s.logger.Debug(ctx, "Coalesced dashboard load", logger.Fields{"tenant_id": tenantID})
	}

	resp := dto.NewScoresResponse(v.(*models.Dashboard))
	return &resp, nil
}

func (s *dashboardAppServiceImpl) load(ctx context.Context, tenantID string) (*models.Dashboard, error) {
	tenant, err := s.deps.Repositories.Tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	dashboard := &models.Dashboard{
		TenantID: tenant.ID,
		Scores:   tenant.ESGScores,
		Progress: tenant.ProgressMetrics,
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Set(ctx, dashboard); err != nil {
			s.logger.Warn(ctx, "Failed to populate score cache", logger.Fields{
				"tenant_id": tenantID,
				"error":     err.Error(),
			})
			return dashboard, nil
		}
		s.dropIfStale(ctx, dashboard)
	}
	return dashboard, nil
}

// dropIfStale re-reads the tenant after a cache fill. A mutation that committed
// between the first read and Set has already invalidated the entry, so the stale
// dashboard just written must be removed again.
func (s *dashboardAppServiceImpl) dropIfStale(ctx context.Context, cached *models.Dashboard) {
	current, err := s.deps.Repositories.Tenants.FindByID(ctx, cached.TenantID)
	if err == nil && current.ESGScores == cached.Scores && current.ProgressMetrics == cached.Progress {
		return
	}
	if err := s.deps.Cache.Invalidate(ctx, cached.TenantID); err != nil {
		s.logger.Warn(ctx, "Failed to drop stale score cache entry", logger.Fields{
			"tenant_id": cached.TenantID,
			"error":     err.Error(),
		})
	}
}
