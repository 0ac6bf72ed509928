package service

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/logger"
)

//go:embed fixtures/demo_company.yaml
var demoCompanyYAML []byte

// DemoFixture is the demo company and its tasks. Dates are day offsets from
// the time of seeding.
type DemoFixture struct {
	Tenant   dto.CreateTenantRequest `yaml:"tenant"`
	Defaults demoTaskDefaults        `yaml:"defaults"`
	Tasks    []demoTask              `yaml:"tasks"`
}

type demoTaskDefaults struct {
	EstimatedHours    float64  `yaml:"estimated_hours"`
	Frameworks        []string `yaml:"frameworks"`
	ComplianceContext string   `yaml:"compliance_context"`
	ActionRequired    string   `yaml:"action_required"`
	DueInDays         int      `yaml:"due_in_days"`
}

type demoTask struct {
	Title              string                 `yaml:"title"`
	Description        string                 `yaml:"description"`
	TaskType           string                 `yaml:"task_type"`
	Category           string                 `yaml:"category"`
	Status             string                 `yaml:"status"`
	Priority           string                 `yaml:"priority"`
	ProgressPercentage int                    `yaml:"progress_percentage"`
	CompletionNotes    string                 `yaml:"completion_notes"`
	StartedDaysAgo     *int                   `yaml:"started_days_ago"`
	CompletedDaysAgo   *int                   `yaml:"completed_days_ago"`
	DueInDays          *int                   `yaml:"due_in_days"`
	DataEntries        map[string]interface{} `yaml:"data_entries"`
	ExpectedFiles      []string               `yaml:"expected_files"`
}

// LoadDemoFixture parses a demo fixture document.
func LoadDemoFixture(data []byte) (*DemoFixture, error) {
	var f DemoFixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse demo fixture: %w", err)
	}
	if f.Tenant.Name == "" {
		return nil, fmt.Errorf("demo fixture: tenant name is required")
	}
	return &f, nil
}

// DefaultDemoFixture returns the embedded demo company.
func DefaultDemoFixture() (*DemoFixture, error) {
	return LoadDemoFixture(demoCompanyYAML)
}

// BuildTasks materialises the fixture's tasks relative to now.
func (f *DemoFixture) BuildTasks(now time.Time) []*models.Task {
	day := 24 * time.Hour
	at := func(offsetDays int) *time.Time {
		t := now.Add(time.Duration(offsetDays) * day)
		return &t
	}

	tasks := make([]*models.Task, 0, len(f.Tasks))
	for _, d := range f.Tasks {
		hours := f.Defaults.EstimatedHours
		due := f.Defaults.DueInDays
		if d.DueInDays != nil {
			due = *d.DueInDays
		}

		task := &models.Task{
			Title:              d.Title,
			Description:        d.Description,
			TaskType:           constants.TaskType(d.TaskType),
			Category:           d.Category,
			Status:             constants.TaskStatus(d.Status),
			Priority:           constants.TaskPriority(d.Priority),
			DueDate:            at(due),
			EstimatedHours:     &hours,
			Frameworks:         append([]string(nil), f.Defaults.Frameworks...),
			ComplianceContext:  f.Defaults.ComplianceContext,
			ActionRequired:     f.Defaults.ActionRequired,
			ProgressPercentage: d.ProgressPercentage,
			CompletionNotes:    d.CompletionNotes,
			DataEntries:        models.DataEntries(d.DataEntries),
			ExpectedFiles:      d.ExpectedFiles,
		}
		if d.StartedDaysAgo != nil {
			task.StartedAt = at(-*d.StartedDaysAgo)
		}
		if d.CompletedDaysAgo != nil {
			task.CompletedAt = at(-*d.CompletedDaysAgo)
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// DemoSeedResult describes a seeded demo tenant.
type DemoSeedResult struct {
	Tenant dto.TenantResponse `json:"tenant"`
	Tasks  int                `json:"tasks"`
	Scores models.ESGScores   `json:"scores"`
}

// DemoService seeds and clears the demo company through the lifecycle
// services, so scores and progress are computed exactly as for user data.
// DemoService 演示数据服务。
type DemoService struct {
	tenants TenantAppService
	tasks   TaskAppService
	clock   func() time.Time
	logger  logger.Logger
}

// NewDemoService creates a demo service on top of the tenant and task services.
func NewDemoService(tenants TenantAppService, tasks TaskAppService, deps Dependencies) *DemoService {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &DemoService{
		tenants: tenants,
		tasks:   tasks,
		clock:   deps.now,
		logger:  log.WithComponent("demo_service"),
	}
}

// Seed onboards a new tenant from the fixture and imports its tasks.
func (s *DemoService) Seed(ctx context.Context, fixture *DemoFixture) (*DemoSeedResult, error) {
	tenant, err := s.tenants.CreateTenant(ctx, &fixture.Tenant)
	if err != nil {
		return nil, err
	}

	imported, err := s.tasks.ImportTasks(ctx, tenant.ID, fixture.BuildTasks(s.clock()))
	if err != nil {
		return nil, err
	}

	seeded, err := s.tenants.GetTenant(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Demo tenant seeded", logger.Fields{
		"tenant_id":         tenant.ID,
		"tasks":             len(imported.Tasks),
		"overall_esg_score": imported.Scores.Overall,
	})
	return &DemoSeedResult{Tenant: *seeded, Tasks: len(imported.Tasks), Scores: imported.Scores}, nil
}

// Clear removes every task of the tenant and resets it to onboarding.
func (s *DemoService) Clear(ctx context.Context, tenantID string) (*dto.ResetTenantResponse, error) {
	return s.tenants.ResetTenant(ctx, tenantID)
}
