// Package service implements the application use cases of the ESG compliance
// service: tenant, task and attachment lifecycles, the dashboard and demo data.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
	"github.com/turtacn/esg/pkg/utils"
)

// TenantAppService defines the application service interface for tenant management use cases.
// TenantAppService 租户应用服务接口。
type TenantAppService interface {
	// CreateTenant onboards a company with every score at zero.
	// CreateTenant 创建租户。
	CreateTenant(ctx context.Context, req *dto.CreateTenantRequest) (*dto.TenantResponse, error)

	// GetTenant returns a tenant with its current scores and progress.
	// GetTenant 获取租户。
	GetTenant(ctx context.Context, tenantID string) (*dto.TenantResponse, error)

	// ListTenants retrieves a paginated list of all tenants.
	// ListTenants 列出所有租户。
	ListTenants(ctx context.Context, req *dto.ListTenantsRequest) (*dto.ListTenantsResponse, error)

	// UpdateTenantProfile applies a partial profile update. Scores are not touched.
	// UpdateTenantProfile 更新租户资料。
	UpdateTenantProfile(ctx context.Context, tenantID string, req *dto.UpdateTenantRequest) (*dto.TenantResponse, error)

	// RecomputeScores recomputes the tenant's progress and scores on demand.
	// RecomputeScores 手动重算评分。
	RecomputeScores(ctx context.Context, tenantID string) (*models.ESGScores, error)

	// ResetTenant deletes every task and attachment and returns the tenant to
	// its onboarding state.
	// ResetTenant 清空租户数据并恢复到初始状态。
	ResetTenant(ctx context.Context, tenantID string) (*dto.ResetTenantResponse, error)
}

// tenantAppServiceImpl is the concrete implementation of the TenantAppService interface.
type tenantAppServiceImpl struct {
	deps    Dependencies
	mutator *mutator
	logger  logger.Logger
}

// NewTenantAppService creates a new instance of TenantAppService.
// NewTenantAppService 创建租户应用服务实例。
func NewTenantAppService(deps Dependencies) TenantAppService {
	m := newMutator(deps)
	return &tenantAppServiceImpl{
		deps:    deps,
		mutator: m,
		logger:  m.logger.WithComponent("tenant_app_service"),
	}
}

func (s *tenantAppServiceImpl) CreateTenant(ctx context.Context, req *dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	tenant := models.NewTenant(uuid.NewString(), req.Name)
	tenant.Description = req.Description
	tenant.BusinessSector = req.BusinessSector
	tenant.EmployeeSize = req.EmployeeSize
	tenant.Emirate = req.Emirate
	tenant.LicenseType = req.LicenseType
	if req.MainLocation != "" {
		tenant.MainLocation = req.MainLocation
	}
	if req.ScopingData != nil {
		tenant.ScopingData = req.ScopingData
	}
	if err := tenant.ValidateProfile(); err != nil {
		return nil, errors.ErrInvalidRequest(err.Error())
	}

	err := s.mutator.runWithoutScores(ctx, tenant.ID, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		if err := repos.Tenants.Save(ctx, tenant); err != nil {
			return nil, err
		}
		return []models.AuditEvent{
			models.NewAuditEvent(tenant.ID, constants.AuditEventTenantCreated, "tenant", tenant.ID).
				WithMetadata("name", tenant.Name),
		}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tenant")
	}

	s.logger.Info(ctx, "Tenant onboarded", logger.Fields{"tenant_id": tenant.ID, "name": tenant.Name})
	resp := dto.NewTenantResponse(tenant)
	return &resp, nil
}

func (s *tenantAppServiceImpl) GetTenant(ctx context.Context, tenantID string) (*dto.TenantResponse, error) {
	tenant, err := s.deps.Repositories.Tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tenant")
	}
	resp := dto.NewTenantResponse(tenant)
	return &resp, nil
}

func (s *tenantAppServiceImpl) ListTenants(ctx context.Context, req *dto.ListTenantsRequest) (*dto.ListTenantsResponse, error) {
	page, pageSize, offset := utils.NormalizePage(req.Page, req.PageSize, constants.DefaultPageSize, constants.MaxPageSize)

	tenants, total, err := s.deps.Repositories.Tenants.FindAll(ctx, pageSize, offset)
	if err != nil {
		s.logger.Error(ctx, "Failed to list tenants", err)
		return nil, errors.Wrap(err, "failed to list tenants")
	}

	resp := &dto.ListTenantsResponse{
		Tenants:    make([]dto.TenantResponse, 0, len(tenants)),
		Pagination: dto.NewPagination(page, pageSize, total),
	}
	for _, t := range tenants {
		resp.Tenants = append(resp.Tenants, dto.NewTenantResponse(t))
	}
	return resp, nil
}

func (s *tenantAppServiceImpl) UpdateTenantProfile(ctx context.Context, tenantID string, req *dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var updated *models.Tenant
	err := s.mutator.runWithoutScores(ctx, tenantID, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		tenant, err := repos.Tenants.FindByID(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		changed := applyTenantUpdate(tenant, req)
		if err := tenant.ValidateProfile(); err != nil {
			return nil, errors.ErrInvalidRequest(err.Error())
		}
		if err := repos.Tenants.Update(ctx, tenant); err != nil {
			return nil, err
		}
		updated = tenant
		return []models.AuditEvent{
			models.NewAuditEvent(tenantID, constants.AuditEventTenantUpdated, "tenant", tenantID).
				WithMetadata("fields", changed),
		}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update tenant")
	}

	resp := dto.NewTenantResponse(updated)
	return &resp, nil
}

func (s *tenantAppServiceImpl) RecomputeScores(ctx context.Context, tenantID string) (*models.ESGScores, error) {
	scores, err := s.mutator.run(ctx, tenantID, constants.TriggerManual, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		return nil, requireTenant(ctx, repos, tenantID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to recompute scores")
	}
	return &scores, nil
}

func (s *tenantAppServiceImpl) ResetTenant(ctx context.Context, tenantID string) (*dto.ResetTenantResponse, error) {
	var deleted int64

	_, err := s.mutator.run(ctx, tenantID, constants.TriggerTenantReset, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		tenant, err := repos.Tenants.FindByID(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if deleted, err = repos.Tasks.DeleteByTenant(ctx, tenantID); err != nil {
			return nil, err
		}
		tenant.ResetToOnboarding()
		if err := repos.Tenants.Reset(ctx, tenant); err != nil {
			return nil, err
		}
		return []models.AuditEvent{
			models.NewAuditEvent(tenantID, constants.AuditEventTenantReset, "tenant", tenantID).
				WithMetadata("deleted_tasks", deleted),
		}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to reset tenant")
	}

	s.logger.Info(ctx, "Tenant reset to onboarding state", logger.Fields{
		"tenant_id":     tenantID,
		"deleted_tasks": deleted,
	})
	return &dto.ResetTenantResponse{TenantID: tenantID, DeletedTasks: deleted}, nil
}

// applyTenantUpdate copies the set fields and returns their names.
func applyTenantUpdate(t *models.Tenant, req *dto.UpdateTenantRequest) []string {
	var changed []string
	setString := func(name string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = append(changed, name)
		}
	}
	setString("name", &t.Name, req.Name)
	setString("description", &t.Description, req.Description)
	setString("business_sector", &t.BusinessSector, req.BusinessSector)
	setString("employee_size", &t.EmployeeSize, req.EmployeeSize)
	setString("main_location", &t.MainLocation, req.MainLocation)
	setString("emirate", &t.Emirate, req.Emirate)
	setString("license_type", &t.LicenseType, req.LicenseType)

	if req.ESGScopingCompleted != nil {
		t.ESGScopingCompleted = *req.ESGScopingCompleted
		changed = append(changed, "esg_scoping_completed")
	}
	if req.OnboardingCompleted != nil {
		t.OnboardingCompleted = *req.OnboardingCompleted
		changed = append(changed, "onboarding_completed")
	}
	if req.SetupStep != nil {
		t.SetupStep = *req.SetupStep
		changed = append(changed, "setup_step")
	}
	if req.ScopingData != nil {
		t.ScopingData = req.ScopingData
		changed = append(changed, "scoping_data")
	}
	return changed
}

//Personal.AI order the ending
