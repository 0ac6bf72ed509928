package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	"github.com/turtacn/esg/pkg/errors"
)

// AuditRepoImpl persists audit events in the audit_events table.
type AuditRepoImpl struct {
	db *gorm.DB
}

// NewAuditRepository creates a new GORM-based audit repository.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &AuditRepoImpl{db: db}
}

// Save inserts the event. Re-saving an event ID that is already stored is a no-op,
// so replayed deliveries do not fail.
func (r *AuditRepoImpl) Save(ctx context.Context, event *models.AuditEvent) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(event).Error
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	return nil
}

// FindByTenant returns the most recent events of a tenant, newest first.
func (r *AuditRepoImpl) FindByTenant(ctx context.Context, tenantID string, limit int) ([]*models.AuditEvent, error) {
	var events []*models.AuditEvent

	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	return events, nil
}
