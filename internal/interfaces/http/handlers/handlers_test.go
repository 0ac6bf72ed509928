package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// MockTenantAppService is a mock for TenantAppService.
type MockTenantAppService struct {
	mock.Mock
}

func (m *MockTenantAppService) CreateTenant(ctx context.Context, req *dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TenantResponse), args.Error(1)
}

func (m *MockTenantAppService) GetTenant(ctx context.Context, tenantID string) (*dto.TenantResponse, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TenantResponse), args.Error(1)
}

func (m *MockTenantAppService) ListTenants(ctx context.Context, req *dto.ListTenantsRequest) (*dto.ListTenantsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTenantsResponse), args.Error(1)
}

func (m *MockTenantAppService) UpdateTenantProfile(ctx context.Context, tenantID string, req *dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TenantResponse), args.Error(1)
}

func (m *MockTenantAppService) RecomputeScores(ctx context.Context, tenantID string) (*models.ESGScores, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ESGScores), args.Error(1)
}

func (m *MockTenantAppService) ResetTenant(ctx context.Context, tenantID string) (*dto.ResetTenantResponse, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResetTenantResponse), args.Error(1)
}

// MockDashboardAppService is a mock for DashboardAppService.
type MockDashboardAppService struct {
	mock.Mock
}

func (m *MockDashboardAppService) GetScores(ctx context.Context, tenantID string) (*dto.ScoresResponse, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ScoresResponse), args.Error(1)
}

// MockTaskAppService is a mock for TaskAppService.
type MockTaskAppService struct {
	mock.Mock
}

func (m *MockTaskAppService) CreateTask(ctx context.Context, tenantID string, req *dto.CreateTaskRequest) (*dto.TaskMutationResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TaskMutationResponse), args.Error(1)
}

func (m *MockTaskAppService) GetTask(ctx context.Context, tenantID, taskID string) (*dto.TaskResponse, error) {
	args := m.Called(ctx, tenantID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TaskResponse), args.Error(1)
}

func (m *MockTaskAppService) ListTasks(ctx context.Context, tenantID string, req *dto.ListTasksRequest) (*dto.ListTasksResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTasksResponse), args.Error(1)
}

func (m *MockTaskAppService) UpdateTask(ctx context.Context, tenantID, taskID string, req *dto.UpdateTaskRequest) (*dto.TaskMutationResponse, error) {
	args := m.Called(ctx, tenantID, taskID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TaskMutationResponse), args.Error(1)
}

func (m *MockTaskAppService) DeleteTask(ctx context.Context, tenantID, taskID string) (*dto.TaskMutationResponse, error) {
	args := m.Called(ctx, tenantID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TaskMutationResponse), args.Error(1)
}

func (m *MockTaskAppService) ProvisionTasks(ctx context.Context, tenantID string, req *dto.ProvisionTasksRequest) (*dto.ProvisionTasksResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProvisionTasksResponse), args.Error(1)
}

func (m *MockTaskAppService) ImportTasks(ctx context.Context, tenantID string, tasks []*models.Task) (*dto.ProvisionTasksResponse, error) {
	args := m.Called(ctx, tenantID, tasks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProvisionTasksResponse), args.Error(1)
}

func (m *MockTaskAppService) BulkAction(ctx context.Context, tenantID string, req *dto.BulkActionRequest) (*dto.BulkActionResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BulkActionResponse), args.Error(1)
}

// MockAttachmentAppService is a mock for AttachmentAppService.
type MockAttachmentAppService struct {
	mock.Mock
}

func (m *MockAttachmentAppService) AddAttachment(ctx context.Context, tenantID, taskID string, req *dto.CreateAttachmentRequest) (*dto.AttachmentMutationResponse, error) {
	args := m.Called(ctx, tenantID, taskID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AttachmentMutationResponse), args.Error(1)
}

func (m *MockAttachmentAppService) ListAttachments(ctx context.Context, tenantID, taskID string) ([]dto.AttachmentResponse, error) {
	args := m.Called(ctx, tenantID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.AttachmentResponse), args.Error(1)
}

func (m *MockAttachmentAppService) DeleteAttachment(ctx context.Context, tenantID, taskID, attachmentID string) (*dto.AttachmentMutationResponse, error) {
	args := m.Called(ctx, tenantID, taskID, attachmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AttachmentMutationResponse), args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorDTO   `json:"error"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if s, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(s))
	} else if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func setupTenantRouter() (*gin.Engine, *MockTenantAppService, *MockDashboardAppService) {
	tenants := new(MockTenantAppService)
	dashboard := new(MockDashboardAppService)
	h := NewTenantHandler(tenants, dashboard, logger.NewNoopLogger())

	router := gin.New()
	router.POST("/tenants", h.CreateTenant)
	router.GET("/tenants", h.ListTenants)
	router.GET("/tenants/:tenant_id", h.GetTenant)
	router.PUT("/tenants/:tenant_id", h.UpdateTenant)
	router.POST("/tenants/:tenant_id/reset", h.ResetTenant)
	router.GET("/tenants/:tenant_id/scores", h.GetScores)
	router.POST("/tenants/:tenant_id/scores/recompute", h.RecomputeScores)
	return router, tenants, dashboard
}

func TestTenantHandler_CreateTenant(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, tenants, _ := setupTenantRouter()
		tenants.On("CreateTenant", mock.Anything, &dto.CreateTenantRequest{Name: "Acme", Emirate: "dubai"}).
			Return(&dto.TenantResponse{ID: "t-1", Name: "Acme"}, nil).Once()

		w, env := perform(t, router, http.MethodPost, "/tenants", map[string]string{"name": "Acme", "emirate": "dubai"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), `"id":"t-1"`)
		tenants.AssertExpectations(t)
	})

	t.Run("Malformed body", func(t *testing.T) {
		router, tenants, _ := setupTenantRouter()

		w, env := perform(t, router, http.MethodPost, "/tenants", "{not json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "invalid_request", env.Error.Code)
		tenants.AssertNotCalled(t, "CreateTenant", mock.Anything, mock.Anything)
	})

	t.Run("Validation error", func(t *testing.T) {
		router, tenants, _ := setupTenantRouter()
		tenants.On("CreateTenant", mock.Anything, mock.Anything).
			Return(nil, errors.ErrInvalidRequest("name is required")).Once()

		w, env := perform(t, router, http.MethodPost, "/tenants", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
	})
}

func TestTenantHandler_GetTenant(t *testing.T) {
	t.Run("Not found", func(t *testing.T) {
		router, tenants, _ := setupTenantRouter()
		tenants.On("GetTenant", mock.Anything, "missing").Return(nil, errors.ErrTenantNotFound("missing")).Once()

		w, env := perform(t, router, http.MethodGet, "/tenants/missing", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "not_found", env.Error.Code)
	})

	t.Run("Internal errors are masked", func(t *testing.T) {
		router, tenants, _ := setupTenantRouter()
		tenants.On("GetTenant", mock.Anything, "t-1").
			Return(nil, errors.Wrap(errors.New("connection reset by peer"), "failed to get tenant")).Once()

		w, env := perform(t, router, http.MethodGet, "/tenants/t-1", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "internal_error", env.Error.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}

func TestTenantHandler_ListTenants(t *testing.T) {
	router, tenants, _ := setupTenantRouter()
	tenants.On("ListTenants", mock.Anything, &dto.ListTenantsRequest{Page: 2, PageSize: 5}).
		Return(&dto.ListTenantsResponse{Tenants: []dto.TenantResponse{}, Pagination: dto.NewPagination(2, 5, 6)}, nil).Once()

	w, env := perform(t, router, http.MethodGet, "/tenants?page=2&page_size=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total_pages":2`)
	tenants.AssertExpectations(t)
}

func TestTenantHandler_UpdateAndReset(t *testing.T) {
	router, tenants, _ := setupTenantRouter()
	name := "Renamed"
	tenants.On("UpdateTenantProfile", mock.Anything, "t-1", &dto.UpdateTenantRequest{Name: &name}).
		Return(&dto.TenantResponse{ID: "t-1", Name: name}, nil).Once()
	tenants.On("ResetTenant", mock.Anything, "t-1").
		Return(&dto.ResetTenantResponse{TenantID: "t-1", DeletedTasks: 5}, nil).Once()

	w, _ := perform(t, router, http.MethodPut, "/tenants/t-1", map[string]string{"name": name})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := perform(t, router, http.MethodPost, "/tenants/t-1/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"deleted_tasks":5`)
	tenants.AssertExpectations(t)
}

func TestTenantHandler_Scores(t *testing.T) {
	router, tenants, dashboard := setupTenantRouter()
	dashboard.On("GetScores", mock.Anything, "t-1").
		Return(&dto.ScoresResponse{TenantID: "t-1"}, nil).Once()
	tenants.On("RecomputeScores", mock.Anything, "t-1").
		Return(&models.ESGScores{Environmental: 33.3, Social: 50, Governance: 50, Overall: 43.3}, nil).Once()

	w, _ := perform(t, router, http.MethodGet, "/tenants/t-1/scores", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := perform(t, router, http.MethodPost, "/tenants/t-1/scores/recompute", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"tenant_id":"t-1"`)
	assert.Contains(t, string(env.Data), `43.3`)
	tenants.AssertExpectations(t)
	dashboard.AssertExpectations(t)
}

func setupTaskRouter() (*gin.Engine, *MockTaskAppService) {
	tasks := new(MockTaskAppService)
	h := NewTaskHandler(tasks, logger.NewNoopLogger())

	router := gin.New()
	router.POST("/tenants/:tenant_id/tasks", h.CreateTask)
	router.GET("/tenants/:tenant_id/tasks", h.ListTasks)
	router.POST("/tenants/:tenant_id/tasks/provision", h.ProvisionTasks)
	router.POST("/tenants/:tenant_id/tasks/actions", h.BulkAction)
	router.GET("/tenants/:tenant_id/tasks/:task_id", h.GetTask)
	router.PUT("/tenants/:tenant_id/tasks/:task_id", h.UpdateTask)
	router.DELETE("/tenants/:tenant_id/tasks/:task_id", h.DeleteTask)
	return router, tasks
}

func TestTaskHandler(t *testing.T) {
	t.Run("CreateTask", func(t *testing.T) {
		router, tasks := setupTaskRouter()
		tasks.On("CreateTask", mock.Anything, "t-1", mock.MatchedBy(func(req *dto.CreateTaskRequest) bool {
			return req.Title == "Energy audit" && req.Category == "environmental"
		})).Return(&dto.TaskMutationResponse{Task: &dto.TaskResponse{ID: "task-1"}}, nil).Once()

		w, _ := perform(t, router, http.MethodPost, "/tenants/t-1/tasks", map[string]interface{}{
			"title":    "Energy audit",
			"category": "environmental",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		tasks.AssertExpectations(t)
	})

	t.Run("ListTasks binds filters", func(t *testing.T) {
		router, tasks := setupTaskRouter()
		tasks.On("ListTasks", mock.Anything, "t-1", &dto.ListTasksRequest{Status: "completed", Category: "social", Page: 1}).
			Return(&dto.ListTasksResponse{}, nil).Once()

		w, _ := perform(t, router, http.MethodGet, "/tenants/t-1/tasks?status=completed&category=social&page=1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		tasks.AssertExpectations(t)
	})

	t.Run("GetTask not found", func(t *testing.T) {
		router, tasks := setupTaskRouter()
		tasks.On("GetTask", mock.Anything, "t-1", "nope").Return(nil, errors.ErrTaskNotFound("nope")).Once()

		w, _ := perform(t, router, http.MethodGet, "/tenants/t-1/tasks/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UpdateTask and DeleteTask", func(t *testing.T) {
		router, tasks := setupTaskRouter()
		tasks.On("UpdateTask", mock.Anything, "t-1", "task-1", mock.Anything).
			Return(&dto.TaskMutationResponse{}, nil).Once()
		tasks.On("DeleteTask", mock.Anything, "t-1", "task-1").
			Return(&dto.TaskMutationResponse{}, nil).Once()

		w, _ := perform(t, router, http.MethodPut, "/tenants/t-1/tasks/task-1", map[string]string{"status": "completed"})
		assert.Equal(t, http.StatusOK, w.Code)
		w, _ = perform(t, router, http.MethodDelete, "/tenants/t-1/tasks/task-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		tasks.AssertExpectations(t)
	})

	t.Run("Provision and bulk actions", func(t *testing.T) {
		router, tasks := setupTaskRouter()
		tasks.On("ProvisionTasks", mock.Anything, "t-1", mock.Anything).
			Return(&dto.ProvisionTasksResponse{Tasks: []dto.TaskResponse{{}, {}}}, nil).Once()
		tasks.On("BulkAction", mock.Anything, "t-1", mock.Anything).
			Return(&dto.BulkActionResponse{Affected: 2}, nil).Once()

		w, _ := perform(t, router, http.MethodPost, "/tenants/t-1/tasks/provision", map[string]interface{}{"tasks": []interface{}{}})
		assert.Equal(t, http.StatusCreated, w.Code)
		w, _ = perform(t, router, http.MethodPost, "/tenants/t-1/tasks/actions", map[string]interface{}{
			"action":   "delete",
			"task_ids": []string{"a", "b"},
		})
		assert.Equal(t, http.StatusOK, w.Code)
		tasks.AssertExpectations(t)
	})
}

func TestAttachmentHandler(t *testing.T) {
	attachments := new(MockAttachmentAppService)
	h := NewAttachmentHandler(attachments, logger.NewNoopLogger())

	router := gin.New()
	router.POST("/tenants/:tenant_id/tasks/:task_id/attachments", h.AddAttachment)
	router.GET("/tenants/:tenant_id/tasks/:task_id/attachments", h.ListAttachments)
	router.DELETE("/tenants/:tenant_id/tasks/:task_id/attachments/:attachment_id", h.DeleteAttachment)

	attachments.On("AddAttachment", mock.Anything, "t-1", "task-1", mock.MatchedBy(func(req *dto.CreateAttachmentRequest) bool {
		return req.OriginalFilename == "bill.pdf"
	})).Return(&dto.AttachmentMutationResponse{}, nil).Once()
	attachments.On("ListAttachments", mock.Anything, "t-1", "task-1").
		Return([]dto.AttachmentResponse{{ID: "a-1"}}, nil).Once()
	attachments.On("DeleteAttachment", mock.Anything, "t-1", "task-1", "a-9").
		Return(nil, errors.ErrAttachmentNotFound("a-9")).Once()

	w, _ := perform(t, router, http.MethodPost, "/tenants/t-1/tasks/task-1/attachments", map[string]interface{}{
		"original_filename": "bill.pdf",
		"file_size":         2048,
		"mime_type":         "application/pdf",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, env := perform(t, router, http.MethodGet, "/tenants/t-1/tasks/task-1/attachments", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"a-1"`)

	w, _ = perform(t, router, http.MethodDelete, "/tenants/t-1/tasks/task-1/attachments/a-9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	attachments.AssertExpectations(t)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	t.Run("Ready", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{"database": stubPinger{}, "cache": stubPinger{}}, logger.NewNoopLogger())
		router := gin.New()
		router.GET("/health/live", h.Liveness)
		router.GET("/health/ready", h.Readiness)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})

	t.Run("Dependency down", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{
			"database": stubPinger{},
			"cache":    stubPinger{err: errors.ErrCacheOperation},
		}, logger.NewNoopLogger())
		router := gin.New()
		router.GET("/health/ready", h.Readiness)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
	})
}
