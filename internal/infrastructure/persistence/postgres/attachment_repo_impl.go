package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// AttachmentRepoImpl stores evidence attachment metadata.
type AttachmentRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewAttachmentRepository creates a new GORM-based attachment repository.
func NewAttachmentRepository(db *gorm.DB, log logger.Logger) repository.AttachmentRepository {
	return &AttachmentRepoImpl{db: db, logger: log}
}

func (r *AttachmentRepoImpl) Save(ctx context.Context, attachment *models.Attachment) error {
	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		r.logger.Error(ctx, "Failed to create attachment", err, logger.Fields{"task_id": attachment.TaskID})
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	return nil
}

func (r *AttachmentRepoImpl) FindByID(ctx context.Context, taskID, attachmentID string) (*models.Attachment, error) {
	var attachment models.Attachment

	err := r.db.WithContext(ctx).
		Where("id = ? AND task_id = ?", attachmentID, taskID).
		First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAttachmentNotFound(attachmentID)
		}
		return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	return &attachment, nil
}

func (r *AttachmentRepoImpl) FindByTask(ctx context.Context, taskID string) ([]*models.Attachment, error) {
	var attachments []*models.Attachment

	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("uploaded_at ASC").
		Order("id ASC").
		Find(&attachments).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to list attachments", err, logger.Fields{"task_id": taskID})
		return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	return attachments, nil
}

func (r *AttachmentRepoImpl) Delete(ctx context.Context, taskID, attachmentID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND task_id = ?", attachmentID, taskID).
		Delete(&models.Attachment{})
	if result.Error != nil {
		r.logger.Error(ctx, "Failed to delete attachment", result.Error, logger.Fields{"attachment_id": attachmentID})
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrAttachmentNotFound(attachmentID)
	}
	return nil
}

//Personal.AI order the ending
