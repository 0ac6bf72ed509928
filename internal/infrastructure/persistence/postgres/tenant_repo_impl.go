package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// TenantRepoImpl implements TenantRepository interface using GORM.
type TenantRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewTenantRepository creates a new GORM-based tenant repository instance.
func NewTenantRepository(db *gorm.DB, log logger.Logger) repository.TenantRepository {
	return &TenantRepoImpl{
		db:     db,
		logger: log,
	}
}

// Save creates a new tenant in the system.
func (r *TenantRepoImpl) Save(ctx context.Context, tenant *models.Tenant) error {
	startTime := time.Now()

	now := time.Now().UTC()
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
	}
	tenant.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		r.logger.Error(ctx, "Failed to create tenant", err, logger.Fields{"tenant_name": tenant.Name})
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	r.logger.Info(ctx, "Tenant created successfully", logger.Fields{
		"tenant_id":  tenant.ID,
		"name":       tenant.Name,
		"latency_ms": time.Since(startTime).Milliseconds(),
	})
	return nil
}

// tenantProfileColumns are the columns written by a profile update.
var tenantProfileColumns = []string{
	"name", "description", "business_sector", "employee_size", "main_location",
	"emirate", "license_type", "esg_scoping_completed", "onboarding_completed",
	"setup_step", "scoping_data", "updated_at",
}

// Update persists the tenant profile. Score and progress columns are left untouched.
func (r *TenantRepoImpl) Update(ctx context.Context, tenant *models.Tenant) error {
	tenant.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(tenant).
		Select(tenantProfileColumns).
		Updates(tenant)

	if result.Error != nil {
		r.logger.Error(ctx, "Failed to update tenant", result.Error, logger.Fields{"tenant_id": tenant.ID})
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		r.logger.Warn(ctx, "Tenant not found for update", logger.Fields{"tenant_id": tenant.ID})
		return errors.ErrTenantNotFound(tenant.ID)
	}

	r.logger.Info(ctx, "Tenant updated successfully", logger.Fields{"tenant_id": tenant.ID})
	return nil
}

// Reset overwrites every mutable column, scores and progress included, with the
// tenant's in-memory state.
func (r *TenantRepoImpl) Reset(ctx context.Context, tenant *models.Tenant) error {
	tenant.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(tenant).
		Select("*").
		Omit("id", "created_at").
		Updates(tenant)

	if result.Error != nil {
		r.logger.Error(ctx, "Failed to reset tenant", result.Error, logger.Fields{"tenant_id": tenant.ID})
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrTenantNotFound(tenant.ID)
	}

	r.logger.Info(ctx, "Tenant reset to onboarding state", logger.Fields{"tenant_id": tenant.ID})
	return nil
}

// FindByID retrieves a tenant by its unique identifier.
func (r *TenantRepoImpl) FindByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	var tenant models.Tenant

	err := r.db.WithContext(ctx).
		Where("id = ?", tenantID).
		First(&tenant).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debug(ctx, "Tenant not found", logger.Fields{"tenant_id": tenantID})
			return nil, errors.ErrTenantNotFound(tenantID)
		}
		r.logger.Error(ctx, "Failed to retrieve tenant by ID", err, logger.Fields{"tenant_id": tenantID})
		return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	return &tenant, nil
}

// FindAll returns one page of tenants ordered by creation time and the total count.
func (r *TenantRepoImpl) FindAll(ctx context.Context, limit, offset int) ([]*models.Tenant, int64, error) {
	var (
		tenants []*models.Tenant
		total   int64
	)

	if err := r.db.WithContext(ctx).Model(&models.Tenant{}).Count(&total).Error; err != nil {
		r.logger.Error(ctx, "Failed to count tenants", err)
		return nil, 0, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&tenants).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to list tenants", err)
		return nil, 0, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	return tenants, total, nil
}

// Exists checks if a tenant exists by ID.
func (r *TenantRepoImpl) Exists(ctx context.Context, tenantID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", tenantID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	return count > 0, nil
}

// UpdateScores writes the four score columns in one UPDATE statement.
func (r *TenantRepoImpl) UpdateScores(ctx context.Context, tenantID string, scores models.ESGScores) error {
	result := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", tenantID).
		Updates(map[string]interface{}{
			"environmental_score": scores.Environmental,
			"social_score":        scores.Social,
			"governance_score":    scores.Governance,
			"overall_esg_score":   scores.Overall,
		})

	if result.Error != nil {
		r.logger.Error(ctx, "Failed to persist ESG scores", result.Error, logger.Fields{"tenant_id": tenantID})
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrTenantNotFound(tenantID)
	}
	return nil
}

// UpdateProgress writes the progress metric columns in one UPDATE statement.
func (r *TenantRepoImpl) UpdateProgress(ctx context.Context, tenantID string, progress models.ProgressMetrics) error {
	result := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", tenantID).
		Updates(map[string]interface{}{
			"data_completion_percentage":     progress.DataCompletionPercentage,
			"evidence_completion_percentage": progress.EvidenceCompletionPercentage,
			"total_fields":                   progress.TotalFields,
			"completed_fields":               progress.CompletedFields,
			"total_evidence_files":           progress.TotalEvidenceFiles,
			"uploaded_evidence_files":        progress.UploadedEvidenceFiles,
		})

	if result.Error != nil {
		r.logger.Error(ctx, "Failed to persist progress metrics", result.Error, logger.Fields{"tenant_id": tenantID})
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrTenantNotFound(tenantID)
	}
	return nil
}

//Personal.AI order the ending
