package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/application/service"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// TaskHandler 任务 HTTP 处理器
type TaskHandler struct {
	tasks  service.TaskAppService
	logger logger.Logger
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(tasks service.TaskAppService, log logger.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: log.WithComponent("task_handler")}
}

// CreateTask POST /api/v1/tenants/:tenant_id/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.tasks.CreateTask(c.Request.Context(), c.Param("tenant_id"), &req)
	if err != nil {
		handleError(c, h.logger, err, "create_task")
		return
	}
	respond(c, http.StatusCreated, resp)
}

// ListTasks GET /api/v1/tenants/:tenant_id/tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var req dto.ListTasksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleError(c, h.logger, errors.ErrInvalidRequest(err.Error()), "list_tasks")
		return
	}
	resp, err := h.tasks.ListTasks(c.Request.Context(), c.Param("tenant_id"), &req)
	if err != nil {
		handleError(c, h.logger, err, "list_tasks")
		return
	}
	respond(c, http.StatusOK, resp)
}

// GetTask GET /api/v1/tenants/:tenant_id/tasks/:task_id
func (h *TaskHandler) GetTask(c *gin.Context) {
	resp, err := h.tasks.GetTask(c.Request.Context(), c.Param("tenant_id"), c.Param("task_id"))
	if err != nil {
		handleError(c, h.logger, err, "get_task")
		return
	}
	respond(c, http.StatusOK, resp)
}

// UpdateTask PUT /api/v1/tenants/:tenant_id/tasks/:task_id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.tasks.UpdateTask(c.Request.Context(), c.Param("tenant_id"), c.Param("task_id"), &req)
	if err != nil {
		handleError(c, h.logger, err, "update_task")
		return
	}
	respond(c, http.StatusOK, resp)
}

// DeleteTask DELETE /api/v1/tenants/:tenant_id/tasks/:task_id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	resp, err := h.tasks.DeleteTask(c.Request.Context(), c.Param("tenant_id"), c.Param("task_id"))
	if err != nil {
		handleError(c, h.logger, err, "delete_task")
		return
	}
	respond(c, http.StatusOK, resp)
}

// ProvisionTasks POST /api/v1/tenants/:tenant_id/tasks/provision
func (h *TaskHandler) ProvisionTasks(c *gin.Context) {
	var req dto.ProvisionTasksRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.tasks.ProvisionTasks(c.Request.Context(), c.Param("tenant_id"), &req)
	if err != nil {
		handleError(c, h.logger, err, "provision_tasks")
		return
	}
	respond(c, http.StatusCreated, resp)
}

// BulkAction POST /api/v1/tenants/:tenant_id/tasks/actions
func (h *TaskHandler) BulkAction(c *gin.Context) {
	var req dto.BulkActionRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.tasks.BulkAction(c.Request.Context(), c.Param("tenant_id"), &req)
	if err != nil {
		handleError(c, h.logger, err, "bulk_action")
		return
	}
	respond(c, http.StatusOK, resp)
}
