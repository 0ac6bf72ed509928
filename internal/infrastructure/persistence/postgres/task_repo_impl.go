package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// TaskRepoImpl implements TaskRepository using GORM.
// TaskRepoImpl 基于 GORM 实现任务仓储。
type TaskRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewTaskRepository creates a new GORM-based task repository.
func NewTaskRepository(db *gorm.DB, log logger.Logger) repository.TaskRepository {
	return &TaskRepoImpl{db: db, logger: log}
}

// Save inserts a new task.
func (r *TaskRepoImpl) Save(ctx context.Context, task *models.Task) error {
	startTime := time.Now()

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.logger.Error(ctx, "Failed to create task", err, logger.Fields{
			"tenant_id": task.TenantID,
			"title":     task.Title,
		})
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	r.logger.Debug(ctx, "Task created", logger.Fields{
		"tenant_id":  task.TenantID,
		"task_id":    task.ID,
		"latency_ms": time.Since(startTime).Milliseconds(),
	})
	return nil
}

// Update writes every mutable column of the task, zero values included.
func (r *TaskRepoImpl) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(task).
		Where("tenant_id = ?", task.TenantID).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(task)

	if result.Error != nil {
		r.logger.Error(ctx, "Failed to update task", result.Error, logger.Fields{"task_id": task.ID})
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrTaskNotFound(task.ID)
	}
	return nil
}

// FindByID returns a task scoped to its tenant.
func (r *TaskRepoImpl) FindByID(ctx context.Context, tenantID, taskID string) (*models.Task, error) {
	var task models.Task

	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", taskID, tenantID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrTaskNotFound(taskID)
		}
		r.logger.Error(ctx, "Failed to retrieve task", err, logger.Fields{"task_id": taskID})
		return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	return &task, nil
}

// FindByIDs returns the tenant's tasks among taskIDs. Unknown IDs are skipped.
func (r *TaskRepoImpl) FindByIDs(ctx context.Context, tenantID string, taskIDs []string) ([]*models.Task, error) {
	var tasks []*models.Task
	if len(taskIDs) == 0 {
		return tasks, nil
	}

	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, taskIDs).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to retrieve tasks by ID", err, logger.Fields{
			"tenant_id": tenantID,
			"count":     len(taskIDs),
		})
		return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	return tasks, nil
}

// FindByTenant lists one page of a tenant's tasks, newest first.
func (r *TaskRepoImpl) FindByTenant(ctx context.Context, tenantID string, filter models.TaskFilter) ([]*models.Task, int64, error) {
	var (
		tasks []*models.Task
		total int64
	)

	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		r.logger.Error(ctx, "Failed to count tasks", err, logger.Fields{"tenant_id": tenantID})
		return nil, 0, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.
		Offset(filter.Offset).
		Order("created_at DESC").
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to list tasks", err, logger.Fields{"tenant_id": tenantID})
		return nil, 0, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	return tasks, total, nil
}

// Delete removes the task together with its attachments.
func (r *TaskRepoImpl) Delete(ctx context.Context, tenantID, taskID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND tenant_id = ?", taskID, tenantID).Delete(&models.Task{})
		if result.Error != nil {
			r.logger.Error(ctx, "Failed to delete task", result.Error, logger.Fields{"task_id": taskID})
			return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.ErrTaskNotFound(taskID)
		}

		if err := tx.Where("task_id = ?", taskID).Delete(&models.Attachment{}).Error; err != nil {
			r.logger.Error(ctx, "Failed to delete task attachments", err, logger.Fields{"task_id": taskID})
			return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
		}
		return nil
	})
}

// DeleteByTenant removes every task and attachment of the tenant.
func (r *TaskRepoImpl) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	var deleted int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenantID).Delete(&models.Attachment{}).Error; err != nil {
			return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
		}
		result := tx.Where("tenant_id = ?", tenantID).Delete(&models.Task{})
		if result.Error != nil {
			return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		r.logger.Error(ctx, "Failed to delete tenant tasks", err, logger.Fields{"tenant_id": tenantID})
		return 0, err
	}

	r.logger.Info(ctx, "Tenant tasks deleted", logger.Fields{
		"tenant_id": tenantID,
		"deleted":   deleted,
	})
	return deleted, nil
}

// attachmentCount is the row shape of the per-task attachment count query.
type attachmentCount struct {
	TaskID string
	Count  int
}

// ListScoringInputs loads the scoring view of every task plus its attachment count.
func (r *TaskRepoImpl) ListScoringInputs(ctx context.Context, tenantID string) ([]models.ScoringInput, error) {
	var tasks []*models.Task
	err := r.db.WithContext(ctx).
		Select("id", "category", "data_entries", "expected_files").
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to load tasks for scoring", err, logger.Fields{"tenant_id": tenantID})
		return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	if len(tasks) == 0 {
		return []models.ScoringInput{}, nil
	}

	var counts []attachmentCount
	err = r.db.WithContext(ctx).
		Model(&models.Attachment{}).
		Select("task_id, COUNT(*) AS count").
		Where("tenant_id = ?", tenantID).
		Group("task_id").
		Scan(&counts).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to count attachments for scoring", err, logger.Fields{"tenant_id": tenantID})
		return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	byTask := make(map[string]int, len(counts))
	for _, c := range counts {
		byTask[c.TaskID] = c.Count
	}

	inputs := make([]models.ScoringInput, 0, len(tasks))
	for _, task := range tasks {
		inputs = append(inputs, task.ScoringInput(byTask[task.ID]))
	}
	return inputs, nil
}

// AggregateMeterReadings sums the recognised meter keys over all the tenant's tasks.
func (r *TaskRepoImpl) AggregateMeterReadings(ctx context.Context, tenantID string) (models.MeterReadings, error) {
	var (
		tasks  []*models.Task
		totals models.MeterReadings
	)

	err := r.db.WithContext(ctx).
		Select("id", "data_entries").
		Where("tenant_id = ?", tenantID).
		Find(&tasks).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to aggregate meter readings", err, logger.Fields{"tenant_id": tenantID})
		return totals, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	for _, task := range tasks {
		totals.Add(task.DataEntries)
	}
	return totals, nil
}

//Personal.AI order the ending
