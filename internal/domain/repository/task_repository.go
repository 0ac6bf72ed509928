package repository

import (
	"context"

	"github.com/turtacn/esg/internal/domain/models"
)

// TaskRepository defines the interface for task data access operations.
type TaskRepository interface {
	Save(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, tenantID, taskID string) (*models.Task, error)
	FindByIDs(ctx context.Context, tenantID string, taskIDs []string) ([]*models.Task, error)
	FindByTenant(ctx context.Context, tenantID string, filter models.TaskFilter) ([]*models.Task, int64, error)

	// Delete removes the task and its attachments.
	Delete(ctx context.Context, tenantID, taskID string) error

	// DeleteByTenant removes every task and attachment of a tenant and returns the task count.
	DeleteByTenant(ctx context.Context, tenantID string) (int64, error)

	// ListScoringInputs returns every task of the tenant with its attachment count.
	ListScoringInputs(ctx context.Context, tenantID string) ([]models.ScoringInput, error)

	// AggregateMeterReadings sums recognised meter keys across all the tenant's tasks.
	AggregateMeterReadings(ctx context.Context, tenantID string) (models.MeterReadings, error)
}

// AttachmentRepository defines the interface for evidence attachment metadata.
type AttachmentRepository interface {
	Save(ctx context.Context, attachment *models.Attachment) error
	FindByID(ctx context.Context, taskID, attachmentID string) (*models.Attachment, error)
	FindByTask(ctx context.Context, taskID string) ([]*models.Attachment, error)
	Delete(ctx context.Context, taskID, attachmentID string) error
}

// AuditRepository persists audit events.
type AuditRepository interface {
	Save(ctx context.Context, event *models.AuditEvent) error
	FindByTenant(ctx context.Context, tenantID string, limit int) ([]*models.AuditEvent, error)
}

// Repositories groups the repositories bound to one database handle or transaction.
type Repositories struct {
	Tenants     TenantRepository
	Tasks       TaskRepository
	Attachments AttachmentRepository
}

// UnitOfWork runs fn inside a single transaction. Repositories passed to fn are
// bound to that transaction; returning an error rolls everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
