// Package constants defines system-wide constants for the ESG compliance service.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Error Code Constants
// ================================================================================

// ErrorCode is the machine-readable code attached to every structured error.
type ErrorCode string

const (
	ErrCodeInvalidRequest     ErrorCode = "invalid_request"
	ErrCodeNotFound           ErrorCode = "not_found"
	ErrCodeConflict           ErrorCode = "conflict"
	ErrCodeInternal           ErrorCode = "internal_error"
	ErrCodeServiceUnavailable ErrorCode = "service_unavailable"
	ErrCodeDatabase           ErrorCode = "database_error"
	ErrCodeCache              ErrorCode = "cache_error"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey is the type used for values stored in context.Context.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyTraceID   ContextKey = "trace_id"
	ContextKeyTenantID  ContextKey = "tenant_id"
	ContextKeyLogger    ContextKey = "logger"
)

// HeaderRequestID is the HTTP header carrying the request correlation ID.
const HeaderRequestID = "X-Request-ID"

// ================================================================================
// Task Constants
// ================================================================================

// TaskStatus represents the lifecycle status of a compliance task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority represents how urgent a compliance task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// TaskType represents the kind of work a task requires
type TaskType string

const (
	TaskTypeDataCollection TaskType = "data_collection"
	TaskTypeDocumentation  TaskType = "documentation"
	TaskTypePolicyReview   TaskType = "policy_review"
	TaskTypeTraining       TaskType = "training"
	TaskTypeOther          TaskType = "other"
)

// BulkAction names an operation applied to several tasks at once.
type BulkAction string

const (
	BulkActionMarkCompleted  BulkAction = "mark_completed"
	BulkActionMarkInProgress BulkAction = "mark_in_progress"
	BulkActionSetPriority    BulkAction = "set_priority"
	BulkActionSetDueDate     BulkAction = "set_due_date"
	BulkActionDelete         BulkAction = "delete"
)

// ================================================================================
// Scoring Constants
// ================================================================================

// ScoreTrigger labels what caused a score recomputation.
type ScoreTrigger string

const (
	TriggerTaskCreated       ScoreTrigger = "task_created"
	TriggerTaskUpdated       ScoreTrigger = "task_updated"
	TriggerTaskDeleted       ScoreTrigger = "task_deleted"
	TriggerAttachmentCreated ScoreTrigger = "attachment_created"
	TriggerAttachmentDeleted ScoreTrigger = "attachment_deleted"
	TriggerManual            ScoreTrigger = "manual"
	TriggerTenantReset       ScoreTrigger = "tenant_reset"
)

// Recognised meter keys inside task data entries.
const (
	MeterKeyEnergyKWh = "energy_consumption_kwh"
	MeterKeyWaterM3   = "water_usage_m3"
	MeterKeyGasM3     = "gas_usage_m3"
)

// ================================================================================
// Audit Constants
// ================================================================================

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	AuditEventTenantCreated     AuditEventType = "tenant.created"
	AuditEventTenantUpdated     AuditEventType = "tenant.updated"
	AuditEventTenantReset       AuditEventType = "tenant.reset"
	AuditEventTaskCreated       AuditEventType = "task.created"
	AuditEventTaskUpdated       AuditEventType = "task.updated"
	AuditEventTaskDeleted       AuditEventType = "task.deleted"
	AuditEventAttachmentAdded   AuditEventType = "attachment.created"
	AuditEventAttachmentRemoved AuditEventType = "attachment.deleted"
	AuditEventScoresRecomputed  AuditEventType = "scores.recomputed"
)

// ================================================================================
// Pagination & Cache Defaults
// ================================================================================

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	DefaultScoreCacheTTL = 5 * time.Minute
	ScoreCacheKeyPrefix  = "esg:scores:"
)

// DefaultMainLocation is assigned to tenants that do not provide one.
const DefaultMainLocation = "Dubai, UAE"
