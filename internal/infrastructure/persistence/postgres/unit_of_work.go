package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/turtacn/esg/internal/domain/repository"
	"github.com/turtacn/esg/pkg/logger"
)

// NewRepositories binds the tenant, task and attachment repositories to db,
// which may be a plain handle or an open transaction.
func NewRepositories(db *gorm.DB, log logger.Logger) repository.Repositories {
	return repository.Repositories{
		Tenants:     NewTenantRepository(db, log),
		Tasks:       NewTaskRepository(db, log),
		Attachments: NewAttachmentRepository(db, log),
	}
}

// GormUnitOfWork runs units of work inside GORM transactions.
type GormUnitOfWork struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewUnitOfWork creates a UnitOfWork over db.
func NewUnitOfWork(db *gorm.DB, log logger.Logger) repository.UnitOfWork {
	return &GormUnitOfWork{db: db, logger: log.WithComponent("unit_of_work")}
}

// Do commits when fn returns nil and rolls back otherwise. The error from fn is
// returned unchanged.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx, u.logger))
	})
}
