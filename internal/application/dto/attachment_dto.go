package dto

import (
	"time"

	"github.com/turtacn/esg/internal/domain/models"
)

// CreateAttachmentRequest registers evidence metadata against a task.
type CreateAttachmentRequest struct {
	OriginalFilename string `json:"original_filename" validate:"required,max=255"`
	FileSize         int64  `json:"file_size" validate:"gte=0"`
	MimeType         string `json:"mime_type" validate:"max=100"`
	Title            string `json:"title" validate:"max=255"`
	Description      string `json:"description"`
	AttachmentType   string `json:"attachment_type" validate:"max=50"`
}

// AttachmentResponse is the API view of an attachment.
type AttachmentResponse struct {
	ID               string    `json:"id"`
	TaskID           string    `json:"task_id"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	AttachmentType   string    `json:"attachment_type"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// AttachmentMutationResponse returns the attachment with the tenant's new scores.
type AttachmentMutationResponse struct {
	Attachment *AttachmentResponse `json:"attachment,omitempty"`
	Scores     models.ESGScores    `json:"scores"`
}

// NewAttachmentResponse converts an attachment model.
func NewAttachmentResponse(a *models.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:               a.ID,
		TaskID:           a.TaskID,
		OriginalFilename: a.OriginalFilename,
		FileSize:         a.FileSize,
		MimeType:         a.MimeType,
		Title:            a.Title,
		Description:      a.Description,
		AttachmentType:   a.AttachmentType,
		UploadedAt:       a.UploadedAt,
	}
}
