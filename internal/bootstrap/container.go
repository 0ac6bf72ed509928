// Package bootstrap assembles the ESG service graph from configuration. Both
// the API server and the admin CLI build their dependencies through it.
package bootstrap

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/esg/internal/application/service"
	"github.com/turtacn/esg/internal/config"
	domainsvc "github.com/turtacn/esg/internal/domain/service"
	"github.com/turtacn/esg/internal/infrastructure/audit"
	"github.com/turtacn/esg/internal/infrastructure/cache"
	"github.com/turtacn/esg/internal/infrastructure/monitoring"
	"github.com/turtacn/esg/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/esg/internal/infrastructure/persistence/redis"
	httpapi "github.com/turtacn/esg/internal/interfaces/http"
	"github.com/turtacn/esg/internal/interfaces/http/handlers"
	"github.com/turtacn/esg/internal/interfaces/http/middleware"
	"github.com/turtacn/esg/pkg/logger"
)

// Container owns every long-lived dependency of the process.
// Container 持有进程内所有长生命周期依赖。
type Container struct {
	Config   *config.Config
	Logger   logger.Logger
	DB       *postgres.DBConnection
	Redis    *redis.RedisConnection
	Registry *prometheus.Registry
	Metrics  *monitoring.Metrics
	Tracing  *monitoring.TracingManager
	Cache    domainsvc.ScoreCache
	KeyStore middleware.KeyStore
	Services service.Services

	closers []func(context.Context) error
}

// New connects to the configured backends and builds the application services.
// On failure everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (c *Container, err error) {
	c = &Container{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = c.Close(context.Background())
			c = nil
		}
	}()

	// 指标与追踪
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = monitoring.NewMetrics(c.Registry)

	if c.Tracing, err = monitoring.NewTracingManager(&cfg.Tracing, log); err != nil {
		return c, err
	}
	c.closers = append(c.closers, c.Tracing.Shutdown)

	// 数据库
	if c.DB, err = postgres.NewDBConnection(ctx, &cfg.Database, log); err != nil {
		return c, err
	}
	c.closers = append(c.closers, func(context.Context) error { c.DB.Close(); return nil })

	// 评分缓存与幂等键存储
	switch cfg.Cache.Backend {
	case "redis":
		if c.Redis, err = redis.NewRedisConnection(ctx, &cfg.Redis, log); err != nil {
			return c, err
		}
		c.closers = append(c.closers, func(context.Context) error { return c.Redis.Close() })
		c.Cache = redis.NewScoreCache(c.Redis, cfg.Cache.TTL, c.Metrics, log)
		c.KeyStore = redis.NewKeyStore(c.Redis)
	default:
		c.Cache = cache.NewMemoryScoreCache(cfg.Cache.TTL, c.Metrics)
		c.KeyStore = cache.NewMemoryKeyStore(10 * time.Minute)
	}

	// 审计
	var auditSvc domainsvc.AuditService
	switch cfg.Audit.Sink {
	case "kafka":
		producer := audit.NewKafkaProducer(cfg.Kafka, cfg.Audit.SigningKey, log)
		c.closers = append(c.closers, func(context.Context) error { return producer.Close() })
		auditSvc = producer
	case "gorm":
		auditSvc = audit.NewGormAuditService(postgres.NewAuditRepository(c.DB.DB()))
	default:
		auditSvc = audit.NewNoopAuditService()
	}

	db := c.DB.DB()
	c.Services = service.NewServices(service.Dependencies{
		UnitOfWork:   postgres.NewUnitOfWork(db, log),
		Repositories: postgres.NewRepositories(db, log),
		Aggregator:   domainsvc.NewScoreAggregator(c.Tracing.Tracer(), c.Metrics, log),
		Progress:     domainsvc.NewProgressTracker(log),
		Cache:        c.Cache,
		Audit:        auditSvc,
		Logger:       log,
	})

	log.Info(ctx, "Service graph initialized", logger.Fields{
		"database": cfg.Database.Driver,
		"cache":    cfg.Cache.Backend,
		"audit":    cfg.Audit.Sink,
	})
	return c, nil
}

// Router builds the HTTP router over the container's services.
func (c *Container) Router() *httpapi.Router {
	s := c.Services
	return httpapi.NewRouter(c.Config, httpapi.Handlers{
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": c.DB,
			"cache":    c.Cache,
		}, c.Logger),
		Tenant:     handlers.NewTenantHandler(s.Tenants, s.Dashboard, c.Logger),
		Task:       handlers.NewTaskHandler(s.Tasks, c.Logger),
		Attachment: handlers.NewAttachmentHandler(s.Attachments, c.Logger),
		Metrics:    promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}),
		KeyStore:   c.KeyStore,
		Tracer:     c.Tracing.Tracer(),
		Observer:   c.Metrics,
	}, c.Logger)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return stderrors.Join(errs...)
}

//Personal.AI order the ending
