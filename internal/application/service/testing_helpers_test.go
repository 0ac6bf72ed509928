package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	domainsvc "github.com/turtacn/esg/internal/domain/service"
	"github.com/turtacn/esg/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/esg/pkg/logger"
)

// recordingAudit collects every audit event it receives.
type recordingAudit struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (r *recordingAudit) LogEvent(ctx context.Context, event models.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAudit) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, string(e.EventType))
	}
	return out
}

type testEnv struct {
	db    *gorm.DB
	deps  Dependencies
	audit *recordingAudit

	tenants     TenantAppService
	tasks       TaskAppService
	attachments AttachmentAppService
	dashboard   DashboardAppService
}

// newTestEnv wires the services onto an isolated in-memory SQLite database.
// Options may adjust the dependencies before the services are built.
func newTestEnv(t *testing.T, opts ...func(*Dependencies)) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := logger.NewNoopLogger()
	require.NoError(t, postgres.NewDBConnectionFromGorm(db, log).AutoMigrate(context.Background()))

	audit := &recordingAudit{}
	deps := Dependencies{
		UnitOfWork:   postgres.NewUnitOfWork(db, log),
		Repositories: postgres.NewRepositories(db, log),
		Aggregator:   domainsvc.NewScoreAggregator(nil, nil, log),
		Progress:     domainsvc.NewProgressTracker(log),
		Audit:        audit,
		Logger:       log,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testEnv{
		db:          db,
		deps:        deps,
		audit:       audit,
		tenants:     NewTenantAppService(deps),
		tasks:       NewTaskAppService(deps),
		attachments: NewAttachmentAppService(deps),
		dashboard:   NewDashboardAppService(deps),
	}
}

func (e *testEnv) createTenant(t *testing.T, name string) string {
	t.Helper()
	resp, err := e.tenants.CreateTenant(context.Background(), &dto.CreateTenantRequest{Name: name})
	require.NoError(t, err)
	return resp.ID
}

func (e *testEnv) createTask(t *testing.T, tenantID, category string, entries map[string]interface{}, expected ...string) *dto.TaskResponse {
	t.Helper()
	resp, err := e.tasks.CreateTask(context.Background(), tenantID, &dto.CreateTaskRequest{
		Title:         category + " task",
		Category:      category,
		DataEntries:   entries,
		ExpectedFiles: expected,
	})
	require.NoError(t, err)
	return resp.Task
}

func (e *testEnv) storedTenant(t *testing.T, tenantID string) *models.Tenant {
	t.Helper()
	tenant, err := e.deps.Repositories.Tenants.FindByID(context.Background(), tenantID)
	require.NoError(t, err)
	return tenant
}

func (e *testEnv) countTasks(t *testing.T, tenantID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.Task{}).Where("tenant_id = ?", tenantID).Count(&n).Error)
	return n
}

// failingScoresUoW runs the real unit of work but fails every score write.
type failingScoresUoW struct {
	inner repository.UnitOfWork
	err   error
}

func (u *failingScoresUoW) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return u.inner.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.Tenants = &failingScoreWriter{TenantRepository: repos.Tenants, err: u.err}
		return fn(ctx, repos)
	})
}

type failingScoreWriter struct {
	repository.TenantRepository
	err error
}

func (f *failingScoreWriter) UpdateScores(ctx context.Context, tenantID string, scores models.ESGScores) error {
	return f.err
}
