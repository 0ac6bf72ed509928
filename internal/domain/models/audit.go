package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/turtacn/esg/pkg/constants"
)

// AuditEvent records one committed lifecycle mutation.
type AuditEvent struct {
	EventID      string                   `json:"event_id" gorm:"primaryKey;type:varchar(36)"`
	TenantID     string                   `json:"tenant_id" gorm:"type:varchar(36);index"`
	EventType    constants.AuditEventType `json:"event_type" gorm:"type:varchar(50);index"`
	ResourceType string                   `json:"resource_type" gorm:"type:varchar(30)"`
	ResourceID   string                   `json:"resource_id" gorm:"type:varchar(36)"`
	TraceID      string                   `json:"trace_id,omitempty" gorm:"type:varchar(64)"`
	Metadata     map[string]interface{}   `json:"metadata,omitempty" gorm:"type:text;serializer:json"`
	Timestamp    time.Time                `json:"timestamp" gorm:"index"`
}

// TableName pins the table name.
func (AuditEvent) TableName() string { return "audit_events" }

// NewAuditEvent creates a new audit event for a resource.
func NewAuditEvent(tenantID string, eventType constants.AuditEventType, resourceType, resourceID string) AuditEvent {
	return AuditEvent{
		EventID:      uuid.NewString(),
		TenantID:     tenantID,
		EventType:    eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Timestamp:    time.Now().UTC(),
	}
}

// WithMetadata attaches a metadata key/value to the event.
func (e AuditEvent) WithMetadata(key string, value interface{}) AuditEvent {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// WithTraceID sets the trace correlation ID.
func (e AuditEvent) WithTraceID(traceID string) AuditEvent {
	e.TraceID = traceID
	return e
}
