// Package audit implements the AuditService interface over GORM, Kafka or nothing.
package audit

import (
	"context"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	"github.com/turtacn/esg/internal/domain/service"
)

// GormAuditService provides a GORM-backed implementation of the AuditService.
// It stores audit events in the audit_events table.
type GormAuditService struct {
	repo repository.AuditRepository
}

// NewGormAuditService creates and configures a new GormAuditService.
func NewGormAuditService(repo repository.AuditRepository) service.AuditService {
	return &GormAuditService{
		repo: repo,
	}
}

// LogEvent saves an AuditEvent to the database.
func (s *GormAuditService) LogEvent(ctx context.Context, event models.AuditEvent) error {
	return s.repo.Save(ctx, &event)
}

// NoopAuditService drops every event.
type NoopAuditService struct{}

// NewNoopAuditService returns an AuditService that records nothing.
func NewNoopAuditService() service.AuditService {
	return NoopAuditService{}
}

func (NoopAuditService) LogEvent(ctx context.Context, event models.AuditEvent) error {
	return nil
}
