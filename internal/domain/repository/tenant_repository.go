// Package repository defines the persistence contracts of the domain layer.
package repository

import (
	"context"

	"github.com/turtacn/esg/internal/domain/models"
)

// TenantRepository defines the interface for tenant data access operations.
// TenantRepository 定义租户数据访问操作的接口。
type TenantRepository interface {
	// Save creates a new tenant.
	Save(ctx context.Context, tenant *models.Tenant) error

	// Update persists profile changes. Scores and progress are not touched.
	Update(ctx context.Context, tenant *models.Tenant) error

	// Reset overwrites the tenant row with its onboarding state, scores and progress included.
	Reset(ctx context.Context, tenant *models.Tenant) error

	// FindByID retrieves a tenant by its identifier.
	FindByID(ctx context.Context, tenantID string) (*models.Tenant, error)

	// FindAll returns a page of tenants and the total count.
	FindAll(ctx context.Context, limit, offset int) ([]*models.Tenant, int64, error)

	// Exists reports whether the tenant exists.
	Exists(ctx context.Context, tenantID string) (bool, error)

	// UpdateScores writes the four score fields in a single statement.
	UpdateScores(ctx context.Context, tenantID string, scores models.ESGScores) error

	// UpdateProgress writes the progress metric fields in a single statement.
	UpdateProgress(ctx context.Context, tenantID string, progress models.ProgressMetrics) error
}
