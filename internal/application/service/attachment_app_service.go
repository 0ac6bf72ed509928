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

// AttachmentAppService registers and removes evidence files on tasks.
// AttachmentAppService 证据附件应用服务。
type AttachmentAppService interface {
	AddAttachment(ctx context.Context, tenantID, taskID string, req *dto.CreateAttachmentRequest) (*dto.AttachmentMutationResponse, error)
	ListAttachments(ctx context.Context, tenantID, taskID string) ([]dto.AttachmentResponse, error)
	DeleteAttachment(ctx context.Context, tenantID, taskID, attachmentID string) (*dto.AttachmentMutationResponse, error)
}

type attachmentAppServiceImpl struct {
	deps    Dependencies
	mutator *mutator
	logger  logger.Logger
}

// NewAttachmentAppService creates a new instance of AttachmentAppService.
func NewAttachmentAppService(deps Dependencies) AttachmentAppService {
	m := newMutator(deps)
	return &attachmentAppServiceImpl{
		deps:    deps,
		mutator: m,
		logger:  m.logger.WithComponent("attachment_app_service"),
	}
}

func (s *attachmentAppServiceImpl) AddAttachment(ctx context.Context, tenantID, taskID string, req *dto.CreateAttachmentRequest) (*dto.AttachmentMutationResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	attachment := &models.Attachment{
		ID:               uuid.NewString(),
		TaskID:           taskID,
		TenantID:         tenantID,
		OriginalFilename: req.OriginalFilename,
		FileSize:         req.FileSize,
		MimeType:         req.MimeType,
		Title:            req.Title,
		Description:      req.Description,
		AttachmentType:   req.AttachmentType,
		UploadedAt:       s.deps.now(),
	}
	if attachment.Title == "" {
		attachment.Title = attachment.OriginalFilename
	}

	scores, err := s.mutator.run(ctx, tenantID, constants.TriggerAttachmentCreated, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		// Scopes the attachment to a task the tenant owns.
		if _, err := repos.Tasks.FindByID(ctx, tenantID, taskID); err != nil {
			return nil, err
		}
		if err := repos.Attachments.Save(ctx, attachment); err != nil {
			return nil, err
		}
		return []models.AuditEvent{attachmentEvent(constants.AuditEventAttachmentAdded, attachment)}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to add attachment")
	}

	s.logger.Info(ctx, "Attachment registered", logger.Fields{
		"tenant_id":     tenantID,
		"task_id":       taskID,
		"attachment_id": attachment.ID,
		"file_size":     attachment.FileSize,
	})
	resp := dto.NewAttachmentResponse(attachment)
	return &dto.AttachmentMutationResponse{Attachment: &resp, Scores: scores}, nil
}

func (s *attachmentAppServiceImpl) ListAttachments(ctx context.Context, tenantID, taskID string) ([]dto.AttachmentResponse, error) {
	if _, err := s.deps.Repositories.Tasks.FindByID(ctx, tenantID, taskID); err != nil {
		return nil, errors.Wrap(err, "failed to list attachments")
	}
	attachments, err := s.deps.Repositories.Attachments.FindByTask(ctx, taskID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list attachments")
	}

	resp := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		resp = append(resp, dto.NewAttachmentResponse(a))
	}
	return resp, nil
}

func (s *attachmentAppServiceImpl) DeleteAttachment(ctx context.Context, tenantID, taskID, attachmentID string) (*dto.AttachmentMutationResponse, error) {
	scores, err := s.mutator.run(ctx, tenantID, constants.TriggerAttachmentDeleted, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		if _, err := repos.Tasks.FindByID(ctx, tenantID, taskID); err != nil {
			return nil, err
		}
		attachment, err := repos.Attachments.FindByID(ctx, taskID, attachmentID)
		if err != nil {
			return nil, err
		}
		if err := repos.Attachments.Delete(ctx, taskID, attachmentID); err != nil {
			return nil, err
		}
		return []models.AuditEvent{attachmentEvent(constants.AuditEventAttachmentRemoved, attachment)}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete attachment")
	}
	return &dto.AttachmentMutationResponse{Scores: scores}, nil
}

func attachmentEvent(eventType constants.AuditEventType, a *models.Attachment) models.AuditEvent {
	return models.NewAuditEvent(a.TenantID, eventType, "attachment", a.ID).
		WithMetadata("task_id", a.TaskID).
		WithMetadata("original_filename", a.OriginalFilename)
}
