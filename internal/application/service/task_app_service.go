package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
	"github.com/turtacn/esg/pkg/utils"
)

// TaskAppService defines the task lifecycle use cases. Every mutation
// recomputes the owning tenant's progress and scores before it commits.
// TaskAppService 任务生命周期应用服务。
type TaskAppService interface {
	CreateTask(ctx context.Context, tenantID string, req *dto.CreateTaskRequest) (*dto.TaskMutationResponse, error)
	GetTask(ctx context.Context, tenantID, taskID string) (*dto.TaskResponse, error)
	ListTasks(ctx context.Context, tenantID string, req *dto.ListTasksRequest) (*dto.ListTasksResponse, error)
	UpdateTask(ctx context.Context, tenantID, taskID string, req *dto.UpdateTaskRequest) (*dto.TaskMutationResponse, error)
	DeleteTask(ctx context.Context, tenantID, taskID string) (*dto.TaskMutationResponse, error)

	// ProvisionTasks creates several tasks in one transaction.
	ProvisionTasks(ctx context.Context, tenantID string, req *dto.ProvisionTasksRequest) (*dto.ProvisionTasksResponse, error)

	// ImportTasks stores prepared tasks in one transaction without the
	// due-date check applied to user input. Used for fixtures.
	ImportTasks(ctx context.Context, tenantID string, tasks []*models.Task) (*dto.ProvisionTasksResponse, error)

	// BulkAction applies one action to several tasks of the tenant.
	BulkAction(ctx context.Context, tenantID string, req *dto.BulkActionRequest) (*dto.BulkActionResponse, error)
}

type taskAppServiceImpl struct {
	deps    Dependencies
	mutator *mutator
	logger  logger.Logger
}

// NewTaskAppService creates a new instance of TaskAppService.
func NewTaskAppService(deps Dependencies) TaskAppService {
	m := newMutator(deps)
	return &taskAppServiceImpl{
		deps:    deps,
		mutator: m,
		logger:  m.logger.WithComponent("task_app_service"),
	}
}

func (s *taskAppServiceImpl) CreateTask(ctx context.Context, tenantID string, req *dto.CreateTaskRequest) (*dto.TaskMutationResponse, error) {
	task, err := s.prepareTask(tenantID, req)
	if err != nil {
		return nil, err
	}

	scores, err := s.mutator.run(ctx, tenantID, constants.TriggerTaskCreated, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		if err := requireTenant(ctx, repos, tenantID); err != nil {
			return nil, err
		}
		if err := repos.Tasks.Save(ctx, task); err != nil {
			return nil, err
		}
		return []models.AuditEvent{taskEvent(constants.AuditEventTaskCreated, task)}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create task")
	}

	s.logger.Info(ctx, "Task created", logger.Fields{"tenant_id": tenantID, "task_id": task.ID})
	resp := dto.NewTaskResponse(task, s.deps.now())
	return &dto.TaskMutationResponse{Task: &resp, Scores: scores}, nil
}

func (s *taskAppServiceImpl) GetTask(ctx context.Context, tenantID, taskID string) (*dto.TaskResponse, error) {
	task, err := s.deps.Repositories.Tasks.FindByID(ctx, tenantID, taskID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get task")
	}
	resp := dto.NewTaskResponse(task, s.deps.now())
	return &resp, nil
}

func (s *taskAppServiceImpl) ListTasks(ctx context.Context, tenantID string, req *dto.ListTasksRequest) (*dto.ListTasksResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	exists, err := s.deps.Repositories.Tenants.Exists(ctx, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}
	if !exists {
		return nil, errors.ErrTenantNotFound(tenantID)
	}

	page, pageSize, offset := utils.NormalizePage(req.Page, req.PageSize, constants.DefaultPageSize, constants.MaxPageSize)
	tasks, total, err := s.deps.Repositories.Tasks.FindByTenant(ctx, tenantID, models.TaskFilter{
		Status:   constants.TaskStatus(req.Status),
		Category: req.Category,
		Limit:    pageSize,
		Offset:   offset,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}

	now := s.deps.now()
	resp := &dto.ListTasksResponse{
		Tasks:      make([]dto.TaskResponse, 0, len(tasks)),
		Pagination: dto.NewPagination(page, pageSize, total),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, dto.NewTaskResponse(t, now))
	}
	return resp, nil
}

func (s *taskAppServiceImpl) UpdateTask(ctx context.Context, tenantID, taskID string, req *dto.UpdateTaskRequest) (*dto.TaskMutationResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.DataEntries != nil {
		if err := utils.ValidateDataEntries(req.DataEntries); err != nil {
			return nil, err
		}
	}

	var task *models.Task
	scores, err := s.mutator.run(ctx, tenantID, constants.TriggerTaskUpdated, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		var err error
		if task, err = repos.Tasks.FindByID(ctx, tenantID, taskID); err != nil {
			return nil, err
		}
		previous := task.Status
		req.Apply(task, s.deps.now())
		if err := task.Validate(); err != nil {
			return nil, errors.ErrInvalidRequest(err.Error())
		}
		if err := repos.Tasks.Update(ctx, task); err != nil {
			return nil, err
		}

		event := taskEvent(constants.AuditEventTaskUpdated, task)
		if previous != task.Status {
			event = event.WithMetadata("previous_status", string(previous))
		}
		return []models.AuditEvent{event}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update task")
	}

	resp := dto.NewTaskResponse(task, s.deps.now())
	return &dto.TaskMutationResponse{Task: &resp, Scores: scores}, nil
}

func (s *taskAppServiceImpl) DeleteTask(ctx context.Context, tenantID, taskID string) (*dto.TaskMutationResponse, error) {
	scores, err := s.mutator.run(ctx, tenantID, constants.TriggerTaskDeleted, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		task, err := repos.Tasks.FindByID(ctx, tenantID, taskID)
		if err != nil {
			return nil, err
		}
		if err := repos.Tasks.Delete(ctx, tenantID, taskID); err != nil {
			return nil, err
		}
		return []models.AuditEvent{taskEvent(constants.AuditEventTaskDeleted, task)}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete task")
	}

	s.logger.Info(ctx, "Task deleted", logger.Fields{"tenant_id": tenantID, "task_id": taskID})
	return &dto.TaskMutationResponse{Scores: scores}, nil
}

func (s *taskAppServiceImpl) ProvisionTasks(ctx context.Context, tenantID string, req *dto.ProvisionTasksRequest) (*dto.ProvisionTasksResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(req.Tasks))
	for i := range req.Tasks {
		task, err := s.prepareTask(tenantID, &req.Tasks[i])
		if err != nil {
			if e, ok := errors.AsESGError(err); ok {
				return nil, e.WithMetadata("index", i)
			}
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return s.ImportTasks(ctx, tenantID, tasks)
}

func (s *taskAppServiceImpl) ImportTasks(ctx context.Context, tenantID string, tasks []*models.Task) (*dto.ProvisionTasksResponse, error) {
	now := s.deps.now()
	for i, task := range tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		task.TenantID = tenantID
		task.ApplyDefaults()
		if task.CreatedAt.IsZero() {
			task.CreatedAt = now
		}
		task.UpdatedAt = now
		if err := task.Validate(); err != nil {
			return nil, errors.ErrInvalidRequest(fmt.Sprintf("task %d: %v", i, err))
		}
	}

	scores, err := s.mutator.run(ctx, tenantID, constants.TriggerTaskCreated, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		if err := requireTenant(ctx, repos, tenantID); err != nil {
			return nil, err
		}
		events := make([]models.AuditEvent, 0, len(tasks))
		for _, task := range tasks {
			if err := repos.Tasks.Save(ctx, task); err != nil {
				return nil, err
			}
			events = append(events, taskEvent(constants.AuditEventTaskCreated, task))
		}
		return events, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to provision tasks")
	}

	s.logger.Info(ctx, "Tasks provisioned", logger.Fields{"tenant_id": tenantID, "count": len(tasks)})
	resp := &dto.ProvisionTasksResponse{Tasks: make([]dto.TaskResponse, 0, len(tasks)), Scores: scores}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, dto.NewTaskResponse(task, now))
	}
	return resp, nil
}

func (s *taskAppServiceImpl) BulkAction(ctx context.Context, tenantID string, req *dto.BulkActionRequest) (*dto.BulkActionResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	action := constants.BulkAction(req.Action)
	trigger := constants.TriggerTaskUpdated
	if action == constants.BulkActionDelete {
		trigger = constants.TriggerTaskDeleted
	}

	var affected int
	scores, err := s.mutator.run(ctx, tenantID, trigger, func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error) {
		tasks, err := repos.Tasks.FindByIDs(ctx, tenantID, req.TaskIDs)
		if err != nil {
			return nil, err
		}

		now := s.deps.now()
		events := make([]models.AuditEvent, 0, len(tasks))
		for _, task := range tasks {
			if action == constants.BulkActionDelete {
				if err := repos.Tasks.Delete(ctx, tenantID, task.ID); err != nil {
					return nil, err
				}
				events = append(events, taskEvent(constants.AuditEventTaskDeleted, task).WithMetadata("bulk_action", req.Action))
				continue
			}

			applyBulkAction(task, req, now)
			if err := repos.Tasks.Update(ctx, task); err != nil {
				return nil, err
			}
			events = append(events, taskEvent(constants.AuditEventTaskUpdated, task).WithMetadata("bulk_action", req.Action))
		}
		affected = len(tasks)
		return events, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to apply bulk action")
	}

	s.logger.Info(ctx, "Bulk action applied", logger.Fields{
		"tenant_id": tenantID,
		"action":    req.Action,
		"requested": len(req.TaskIDs),
		"affected":  affected,
	})
	return &dto.BulkActionResponse{Action: req.Action, Affected: affected, Scores: scores}, nil
}

// prepareTask validates a create request and builds the task to store.
// Due dates supplied on creation must lie in the future.
func (s *taskAppServiceImpl) prepareTask(tenantID string, req *dto.CreateTaskRequest) (*models.Task, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	now := s.deps.now()
	if req.DueDate != nil && !req.DueDate.After(now) {
		return nil, errors.ErrInvalidRequest("due_date must be in the future")
	}
	if err := utils.ValidateDataEntries(req.DataEntries); err != nil {
		return nil, err
	}

	task := req.ToModel(tenantID)
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now
	switch task.Status {
	case constants.TaskStatusInProgress, constants.TaskStatusCompleted:
		task.TransitionTo(task.Status, now)
	}
	if err := task.Validate(); err != nil {
		return nil, errors.ErrInvalidRequest(err.Error())
	}
	return task, nil
}

func applyBulkAction(task *models.Task, req *dto.BulkActionRequest, now time.Time) {
	switch constants.BulkAction(req.Action) {
	case constants.BulkActionMarkCompleted:
		task.TransitionTo(constants.TaskStatusCompleted, now)
		if req.Notes != "" {
			task.CompletionNotes = req.Notes
		}
	case constants.BulkActionMarkInProgress:
		task.TransitionTo(constants.TaskStatusInProgress, now)
	case constants.BulkActionSetPriority:
		task.Priority = constants.TaskPriority(req.Priority)
	case constants.BulkActionSetDueDate:
		due := req.DueDate.UTC()
		task.DueDate = &due
	}
}

func requireTenant(ctx context.Context, repos repository.Repositories, tenantID string) error {
	exists, err := repos.Tenants.Exists(ctx, tenantID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.ErrTenantNotFound(tenantID)
	}
	return nil
}

func taskEvent(eventType constants.AuditEventType, task *models.Task) models.AuditEvent {
	return models.NewAuditEvent(task.TenantID, eventType, "task", task.ID).
		WithMetadata("title", task.Title).
		WithMetadata("category", task.Category).
		WithMetadata("status", string(task.Status))
}
