package service

import (
	"context"
	"time"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	domainsvc "github.com/turtacn/esg/internal/domain/service"
	"github.com/turtacn/esg/internal/infrastructure/monitoring"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/logger"
)

// Dependencies groups the collaborators shared by the lifecycle services.
type Dependencies struct {
	UnitOfWork   repository.UnitOfWork
	Repositories repository.Repositories
	Aggregator   *domainsvc.ScoreAggregator
	Progress     *domainsvc.ProgressTracker
	Cache        domainsvc.ScoreCache
	Audit        domainsvc.AuditService
	Logger       logger.Logger
	Clock        func() time.Time
}

func (d Dependencies) now() time.Time {
	if d.Clock != nil {
		return d.Clock().UTC()
	}
	return time.Now().UTC()
}

// mutation is the body of one transactional change. It returns the audit
// events to emit once the transaction has committed.
type mutation func(ctx context.Context, repos repository.Repositories) ([]models.AuditEvent, error)

// mutator runs every tenant-affecting change through the same pipeline:
// transaction, mutation, progress refresh, score recomputation, commit,
// cache invalidation, audit.
// mutator 保证每次变更在同一事务内刷新进度与评分。
type mutator struct {
	deps   Dependencies
	logger logger.Logger
}

func newMutator(deps Dependencies) *mutator {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &mutator{deps: deps, logger: log.WithComponent("lifecycle")}
}

// run executes fn and recomputes the tenant's progress and scores inside the
// same transaction. Any error before commit rolls the whole change back and is
// returned unchanged.
func (m *mutator) run(ctx context.Context, tenantID string, trigger constants.ScoreTrigger, fn mutation) (models.ESGScores, error) {
	var (
		scores models.ESGScores
		events []models.AuditEvent
	)

	err := m.deps.UnitOfWork.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		if events, err = fn(ctx, repos); err != nil {
			return err
		}
		if _, err = m.deps.Progress.Refresh(ctx, tenantID, repos.Tasks, repos.Tenants); err != nil {
			return err
		}
		scores, err = m.deps.Aggregator.Recompute(ctx, tenantID, domainsvc.ScoreStore{
			Tasks:  repos.Tasks,
			Meters: repos.Tasks,
			Scores: repos.Tenants,
		}, trigger)
		return err
	})
	if err != nil {
		return models.ESGScores{}, err
	}

	m.afterCommit(ctx, tenantID, append(events,
		models.NewAuditEvent(tenantID, constants.AuditEventScoresRecomputed, "tenant", tenantID).
			WithMetadata("trigger", string(trigger)).
			WithMetadata("environmental_score", scores.Environmental).
			WithMetadata("social_score", scores.Social).
			WithMetadata("governance_score", scores.Governance).
			WithMetadata("overall_esg_score", scores.Overall),
	))
	return scores, nil
}

// runWithoutScores is run for changes that cannot affect scores, such as a
// profile edit.
func (m *mutator) runWithoutScores(ctx context.Context, tenantID string, fn mutation) error {
	var events []models.AuditEvent
	err := m.deps.UnitOfWork.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		events, err = fn(ctx, repos)
		return err
	})
	if err != nil {
		return err
	}
	m.afterCommit(ctx, tenantID, events)
	return nil
}

// afterCommit invalidates the dashboard cache and emits audit events. The
// change is already durable, so failures here are logged and not returned.
func (m *mutator) afterCommit(ctx context.Context, tenantID string, events []models.AuditEvent) {
	if m.deps.Cache != nil {
		if err := m.deps.Cache.Invalidate(ctx, tenantID); err != nil {
			m.logger.Warn(ctx, "Failed to invalidate score cache", logger.Fields{
				"tenant_id": tenantID,
				"error":     err.Error(),
			})
		}
	}

	if m.deps.Audit == nil {
		return
	}
	traceID := monitoring.GetTraceID(ctx)
	for _, event := range events {
		if err := m.deps.Audit.LogEvent(ctx, event.WithTraceID(traceID)); err != nil {
			m.logger.Warn(ctx, "Failed to record audit event", logger.Fields{
				"tenant_id":  tenantID,
				"event_type": string(event.EventType),
				"error":      err.Error(),
			})
		}
	}
}
