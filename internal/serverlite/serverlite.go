// Package serverlite runs the complete ESG API on an in-memory SQLite database
// with in-process caches. It backs end-to-end tests and local demos.
package serverlite

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/esg/internal/application/service"
	"github.com/turtacn/esg/internal/config"
	domainsvc "github.com/turtacn/esg/internal/domain/service"
	"github.com/turtacn/esg/internal/infrastructure/audit"
	"github.com/turtacn/esg/internal/infrastructure/cache"
	"github.com/turtacn/esg/internal/infrastructure/monitoring"
	"github.com/turtacn/esg/internal/infrastructure/persistence/postgres"
	httpapi "github.com/turtacn/esg/internal/interfaces/http"
	"github.com/turtacn/esg/internal/interfaces/http/handlers"
	"github.com/turtacn/esg/pkg/logger"
)

// Server is a lightweight, in-memory ESG server.
type Server struct {
	HttpServer *http.Server
	Services   service.Services
	Metrics    *monitoring.Metrics

	router *httpapi.Router
	db     *gorm.DB
}

// NewServer wires the full service graph onto a fresh in-memory database.
// Every Server gets its own database and metrics registry.
func NewServer(addr string, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One connection keeps the shared-cache database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	conn := postgres.NewDBConnectionFromGorm(db, log)
	if err := conn.AutoMigrate(ctx); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)
	scoreCache := cache.NewMemoryScoreCache(5*time.Minute, metrics)

	deps := service.Dependencies{
		UnitOfWork:   postgres.NewUnitOfWork(db, log),
		Repositories: postgres.NewRepositories(db, log),
		Aggregator:   domainsvc.NewScoreAggregator(nil, metrics, log),
		Progress:     domainsvc.NewProgressTracker(log),
		Cache:        scoreCache,
		Audit:        audit.NewGormAuditService(postgres.NewAuditRepository(db)),
		Logger:       log,
	}
	services := service.NewServices(deps)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Idempotency: config.IdempotencyConfig{Enabled: true, TTL: time.Hour},
	}
	router := httpapi.NewRouter(cfg, httpapi.Handlers{
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": conn,
			"cache":    scoreCache,
		}, log),
		Tenant:     handlers.NewTenantHandler(services.Tenants, services.Dashboard, log),
		Task:       handlers.NewTaskHandler(services.Tasks, log),
		Attachment: handlers.NewAttachmentHandler(services.Attachments, log),
		Metrics:    promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		KeyStore:   cache.NewMemoryKeyStore(time.Minute),
		Tracer:     otel.Tracer("serverlite"),
		Observer:   metrics,
	}, log)

	return &Server{
		HttpServer: &http.Server{Addr: addr, Handler: router.Engine()},
		Services:   services,
		Metrics:    metrics,
		router:     router,
		db:         db,
	}, nil
}

// Handler returns the HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.HttpServer.Handler
}

// Start runs the server in a goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.HttpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
}

// Stop gracefully shuts down the server and drops the database.
func (s *Server) Stop(ctx context.Context) error {
	err := s.HttpServer.Shutdown(ctx)
	if sqlDB, dbErr := s.db.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	return err
}

//Personal.AI order the ending
