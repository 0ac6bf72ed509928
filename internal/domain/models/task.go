package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/utils"
)

// DataEntries is the free-form key/value map a user fills in on a task.
// Values are dynamically typed: numbers, strings, booleans, null or nested JSON.
type DataEntries map[string]interface{}

// DataPoints counts the values that are non-null and whose string form has
// non-whitespace content.
func (d DataEntries) DataPoints() int {
	n := 0
	for _, v := range d {
		if IsFilled(v) {
			n++
		}
	}
	return n
}

// Numeric returns the numeric value stored under key, or 0 when absent or non-numeric.
func (d DataEntries) Numeric(key string) float64 {
	v, ok := d[key]
	if !ok {
		return 0
	}
	f, ok := utils.ToFloat64(v)
	if !ok {
		return 0
	}
	return f
}

// IsFilled reports whether a single data-entry value counts as provided.
func IsFilled(v interface{}) bool {
	if v == nil {
		return false
	}
	return strings.TrimSpace(utils.Stringify(v)) != ""
}

// Task is a unit of compliance work assigned to a tenant.
// Task 是分配给租户的合规任务。
type Task struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TenantID string `json:"tenant_id" gorm:"type:varchar(36);not null;index"`

	Title             string                 `json:"title" gorm:"type:varchar(255);not null"`
	Description       string                 `json:"description" gorm:"type:text"`
	TaskType          constants.TaskType     `json:"task_type" gorm:"type:varchar(30);not null"`
	Category          string                 `json:"category" gorm:"type:varchar(100);index"`
	Status            constants.TaskStatus   `json:"status" gorm:"type:varchar(20);not null;index"`
	Priority          constants.TaskPriority `json:"priority" gorm:"type:varchar(10);not null"`
	DueDate           *time.Time             `json:"due_date,omitempty"`
	EstimatedHours    *float64               `json:"estimated_hours,omitempty"`
	Frameworks        []string               `json:"frameworks" gorm:"type:text;serializer:json"`
	ComplianceContext string                 `json:"compliance_context" gorm:"type:text"`
	ActionRequired    string                 `json:"action_required" gorm:"type:text"`

	ProgressPercentage int         `json:"progress_percentage" gorm:"not null;default:0"`
	CompletionNotes    string      `json:"completion_notes" gorm:"type:text"`
	DataEntries        DataEntries `json:"data_entries" gorm:"type:text;serializer:json"`
	ExpectedFiles      []string    `json:"expected_files" gorm:"type:text;serializer:json"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName pins the table name.
func (Task) TableName() string { return "tasks" }

// ApplyDefaults fills unset enum fields with their defaults.
func (t *Task) ApplyDefaults() {
	if t.TaskType == "" {
		t.TaskType = constants.TaskTypeDataCollection
	}
	if t.Status == "" {
		t.Status = constants.TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = constants.TaskPriorityMedium
	}
	if t.DataEntries == nil {
		t.DataEntries = DataEntries{}
	}
	if t.ExpectedFiles == nil {
		t.ExpectedFiles = []string{}
	}
	if t.Frameworks == nil {
		t.Frameworks = []string{}
	}
}

// Validate checks the invariants of a task that do not depend on time.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if t.TenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	switch t.Status {
	case constants.TaskStatusTodo, constants.TaskStatusInProgress, constants.TaskStatusCompleted, constants.TaskStatusCancelled:
	default:
		return fmt.Errorf("invalid status %q", t.Status)
	}
	switch t.Priority {
	case constants.TaskPriorityLow, constants.TaskPriorityMedium, constants.TaskPriorityHigh, constants.TaskPriorityUrgent:
	default:
		return fmt.Errorf("invalid priority %q", t.Priority)
	}
	switch t.TaskType {
	case constants.TaskTypeDataCollection, constants.TaskTypeDocumentation, constants.TaskTypePolicyReview,
		constants.TaskTypeTraining, constants.TaskTypeOther:
	default:
		return fmt.Errorf("invalid task_type %q", t.TaskType)
	}
	if t.ProgressPercentage < 0 || t.ProgressPercentage > 100 {
		return fmt.Errorf("progress_percentage must be between 0 and 100")
	}
	return nil
}

// TransitionTo moves the task to status, stamping started_at / completed_at the
// first time the task enters in_progress / completed. Completing a task forces
// progress to 100.
func (t *Task) TransitionTo(status constants.TaskStatus, now time.Time) {
	switch status {
	case constants.TaskStatusInProgress:
		if t.StartedAt == nil {
			t.StartedAt = &now
		}
	case constants.TaskStatusCompleted:
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
		t.ProgressPercentage = 100
	}
	t.Status = status
}

// ScoringInput projects the task onto the fields scoring needs.
func (t *Task) ScoringInput(attachments int) ScoringInput {
	return ScoringInput{
		TaskID:          t.ID,
		Category:        t.Category,
		DataEntries:     t.DataEntries,
		AttachmentCount: attachments,
		ExpectedFiles:   len(t.ExpectedFiles),
	}
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status   constants.TaskStatus
	Category string
	Limit    int
	Offset   int
}
