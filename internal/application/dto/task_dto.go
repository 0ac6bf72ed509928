package dto

import (
	"time"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/errors"
)

// CreateTaskRequest represents the request to create a compliance task.
type CreateTaskRequest struct {
	Title             string                 `json:"title" validate:"required,max=255"`
	Description       string                 `json:"description"`
	TaskType          string                 `json:"task_type" validate:"omitempty,oneof=data_collection documentation policy_review training other"`
	Category          string                 `json:"category" validate:"max=100"`
	Status            string                 `json:"status" validate:"omitempty,oneof=todo in_progress completed cancelled"`
	Priority          string                 `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate           *time.Time             `json:"due_date,omitempty"`
	EstimatedHours    *float64               `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	Frameworks        []string               `json:"frameworks"`
	ComplianceContext string                 `json:"compliance_context"`
	ActionRequired    string                 `json:"action_required"`
	DataEntries       map[string]interface{} `json:"data_entries"`
	ExpectedFiles     []string               `json:"expected_files"`
}

// ToModel builds a task for tenantID. ID and timestamps are set by the service.
func (r *CreateTaskRequest) ToModel(tenantID string) *models.Task {
	task := &models.Task{
		TenantID:          tenantID,
		Title:             r.Title,
		Description:       r.Description,
		TaskType:          constants.TaskType(r.TaskType),
		Category:          r.Category,
		Status:            constants.TaskStatus(r.Status),
		Priority:          constants.TaskPriority(r.Priority),
		DueDate:           r.DueDate,
		EstimatedHours:    r.EstimatedHours,
		Frameworks:        r.Frameworks,
		ComplianceContext: r.ComplianceContext,
		ActionRequired:    r.ActionRequired,
		DataEntries:       models.DataEntries(r.DataEntries),
		ExpectedFiles:     r.ExpectedFiles,
	}
	task.ApplyDefaults()
	return task
}

// UpdateTaskRequest carries a partial task update. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title              *string                `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description        *string                `json:"description,omitempty"`
	Category           *string                `json:"category,omitempty" validate:"omitempty,max=100"`
	Status             *string                `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress completed cancelled"`
	Priority           *string                `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DueDate            *time.Time             `json:"due_date,omitempty"`
	EstimatedHours     *float64               `json:"estimated_hours,omitempty" validate:"omitempty,gte=0"`
	ProgressPercentage *int                   `json:"progress_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	CompletionNotes    *string                `json:"completion_notes,omitempty"`
	Frameworks         []string               `json:"frameworks,omitempty"`
	ComplianceContext  *string                `json:"compliance_context,omitempty"`
	ActionRequired     *string                `json:"action_required,omitempty"`
	DataEntries        map[string]interface{} `json:"data_entries,omitempty"`
	ExpectedFiles      []string               `json:"expected_files,omitempty"`
}

// Apply copies the set fields onto task. Status changes go through TransitionTo.
func (r *UpdateTaskRequest) Apply(task *models.Task, now time.Time) {
	if r.Title != nil {
		task.Title = *r.Title
	}
	if r.Description != nil {
		task.Description = *r.Description
	}
	if r.Category != nil {
		task.Category = *r.Category
	}
	if r.Priority != nil {
		task.Priority = constants.TaskPriority(*r.Priority)
	}
	if r.DueDate != nil {
		task.DueDate = r.DueDate
	}
	if r.EstimatedHours != nil {
		task.EstimatedHours = r.EstimatedHours
	}
	if r.ProgressPercentage != nil {
		task.ProgressPercentage = *r.ProgressPercentage
	}
	if r.CompletionNotes != nil {
		task.CompletionNotes = *r.CompletionNotes
	}
	if r.Frameworks != nil {
		task.Frameworks = r.Frameworks
	}
	if r.ComplianceContext != nil {
		task.ComplianceContext = *r.ComplianceContext
	}
	if r.ActionRequired != nil {
		task.ActionRequired = *r.ActionRequired
	}
	if r.DataEntries != nil {
		task.DataEntries = models.DataEntries(r.DataEntries)
	}
	if r.ExpectedFiles != nil {
		task.ExpectedFiles = r.ExpectedFiles
	}
	if r.Status != nil {
		task.TransitionTo(constants.TaskStatus(*r.Status), now)
	}
}

// ListTasksRequest filters and pages a tenant's tasks.
type ListTasksRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=todo in_progress completed cancelled"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ProvisionTasksRequest creates several tasks in one transaction.
type ProvisionTasksRequest struct {
	Tasks []CreateTaskRequest `json:"tasks" validate:"required,min=1,max=100,dive"`
}

// BulkActionRequest applies one action to several tasks.
type BulkActionRequest struct {
	Action   string     `json:"action" validate:"required,oneof=mark_completed mark_in_progress set_priority set_due_date delete"`
	TaskIDs  []string   `json:"task_ids" validate:"required,min=1,max=500,dive,uuid"`
	Priority string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

// Validate checks the parameters each action needs.
func (r *BulkActionRequest) Validate() error {
	switch constants.BulkAction(r.Action) {
	case constants.BulkActionSetPriority:
		if r.Priority == "" {
			return errors.ErrInvalidRequest("priority is required for set_priority action")
		}
	case constants.BulkActionSetDueDate:
		if r.DueDate == nil {
			return errors.ErrInvalidRequest("due_date is required for set_due_date action")
		}
	}
	return nil
}

// TaskResponse is the API view of a task.
type TaskResponse struct {
	ID                 string                 `json:"id"`
	TenantID           string                 `json:"tenant_id"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	TaskType           string                 `json:"task_type"`
	Category           string                 `json:"category"`
	Status             string                 `json:"status"`
	Priority           string                 `json:"priority"`
	DueDate            *time.Time             `json:"due_date,omitempty"`
	EstimatedHours     *float64               `json:"estimated_hours,omitempty"`
	Frameworks         []string               `json:"frameworks"`
	ComplianceContext  string                 `json:"compliance_context"`
	ActionRequired     string                 `json:"action_required"`
	ProgressPercentage int                    `json:"progress_percentage"`
	CompletionNotes    string                 `json:"completion_notes"`
	DataEntries        map[string]interface{} `json:"data_entries"`
	ExpectedFiles      []string               `json:"expected_files"`
	IsOverdue          bool                   `json:"is_overdue"`
	StartedAt          *time.Time             `json:"started_at,omitempty"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// NewTaskResponse converts a task model. A task is overdue when its due date
// has passed and it is not completed.
func NewTaskResponse(t *models.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:                 t.ID,
		TenantID:           t.TenantID,
		Title:              t.Title,
		Description:        t.Description,
		TaskType:           string(t.TaskType),
		Category:           t.Category,
		Status:             string(t.Status),
		Priority:           string(t.Priority),
		DueDate:            t.DueDate,
		EstimatedHours:     t.EstimatedHours,
		Frameworks:         nonNilStrings(t.Frameworks),
		ComplianceContext:  t.ComplianceContext,
		ActionRequired:     t.ActionRequired,
		ProgressPercentage: t.ProgressPercentage,
		CompletionNotes:    t.CompletionNotes,
		DataEntries:        nonNilMap(t.DataEntries),
		ExpectedFiles:      nonNilStrings(t.ExpectedFiles),
		IsOverdue:          t.DueDate != nil && t.DueDate.Before(now) && t.Status != constants.TaskStatusCompleted,
		StartedAt:          t.StartedAt,
		CompletedAt:        t.CompletedAt,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// ListTasksResponse is one page of tasks.
type ListTasksResponse struct {
	Tasks      []TaskResponse     `json:"tasks"`
	Pagination PaginationResponse `json:"pagination"`
}

// TaskMutationResponse returns a mutated task together with the tenant's new scores.
type TaskMutationResponse struct {
	Task   *TaskResponse    `json:"task,omitempty"`
	Scores models.ESGScores `json:"scores"`
}

// ProvisionTasksResponse lists the created tasks and the resulting scores.
type ProvisionTasksResponse struct {
	Tasks  []TaskResponse   `json:"tasks"`
	Scores models.ESGScores `json:"scores"`
}

// BulkActionResponse reports how many tasks an action touched.
type BulkActionResponse struct {
	Action   string           `json:"action"`
	Affected int              `json:"affected"`
	Scores   models.ESGScores `json:"scores"`
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
