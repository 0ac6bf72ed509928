package models

import "time"

// Attachment is an evidence file registered against a task. Only metadata is
// kept; the bytes live outside this service.
type Attachment struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TaskID           string    `json:"task_id" gorm:"type:varchar(36);not null;index"`
	TenantID         string    `json:"tenant_id" gorm:"type:varchar(36);not null;index"`
	OriginalFilename string    `json:"original_filename" gorm:"type:varchar(255);not null"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type" gorm:"type:varchar(100)"`
	Title            string    `json:"title" gorm:"type:varchar(255)"`
	Description      string    `json:"description" gorm:"type:text"`
	AttachmentType   string    `json:"attachment_type" gorm:"type:varchar(50)"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// TableName pins the table name.
func (Attachment) TableName() string { return "task_attachments" }
