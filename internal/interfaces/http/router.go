// Package http wires the gin engine: global middleware, probes and the /api/v1 routes.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/esg/internal/application/dto"
	"github.com/turtacn/esg/internal/config"
	"github.com/turtacn/esg/internal/interfaces/http/handlers"
	"github.com/turtacn/esg/internal/interfaces/http/middleware"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Health     *handlers.HealthHandler
	Tenant     *handlers.TenantHandler
	Task       *handlers.TaskHandler
	Attachment *handlers.AttachmentHandler
	Metrics    http.Handler
	KeyStore   middleware.KeyStore
	Tracer     trace.Tracer
	Observer   middleware.RequestObserver
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	config   *config.Config
	logger   logger.Logger
	handlers Handlers
	server   *http.Server
}

// NewRouter 创建路由器并注册全部路由
func NewRouter(cfg *config.Config, h Handlers, log logger.Logger) *Router {
	// 设置 Gin 模式
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		config:   cfg,
		logger:   log.WithComponent("http_router"),
		handlers: h,
	}
	r.setupRoutes()

	srv := cfg.Server
	r.server = &http.Server{
		Addr:           srv.Address(),
		Handler:        r.engine,
		ReadTimeout:    time.Duration(srv.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(srv.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(srv.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return r
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupRoutes() {
	h := r.handlers

	// 全局中间件
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Observability(h.Tracer, h.Observer))
	r.engine.Use(middleware.Logging(r.logger))

	// CORS 配置；未配置来源时不允许跨域访问
	if origins := r.config.Server.AllowedOrigins; len(origins) > 0 {
		r.engine.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID", middleware.HeaderIdempotencyKey, "If-None-Match"},
			ExposeHeaders:    []string{"X-Request-ID", "ETag"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 健康检查
	r.engine.GET("/health/live", h.Health.Liveness)
	r.engine.GET("/health/ready", h.Health.Readiness)

	if h.Metrics != nil {
		r.engine.GET("/metrics", gin.WrapH(h.Metrics))
	}
	if r.config.Server.PprofEnabled {
		pprof.Register(r.engine)
	}

	idem := middleware.Idempotency(h.KeyStore, &r.config.Idempotency, r.logger)

	v1 := r.engine.Group("/api/v1")
	v1.Use(idem)
	{
		v1.POST("/tenants", h.Tenant.CreateTenant)
		v1.GET("/tenants", h.Tenant.ListTenants)

		tenant := v1.Group("/tenants/:tenant_id")
		{
			tenant.GET("", h.Tenant.GetTenant)
			tenant.PUT("", h.Tenant.UpdateTenant)
			tenant.POST("/reset", h.Tenant.ResetTenant)
			tenant.GET("/scores", middleware.ETag(), h.Tenant.GetScores)
			tenant.POST("/scores/recompute", h.Tenant.RecomputeScores)

			tenant.POST("/tasks", h.Task.CreateTask)
			tenant.GET("/tasks", h.Task.ListTasks)
			tenant.POST("/tasks/provision", h.Task.ProvisionTasks)
			tenant.POST("/tasks/actions", h.Task.BulkAction)
			tenant.GET("/tasks/:task_id", h.Task.GetTask)
			tenant.PUT("/tasks/:task_id", h.Task.UpdateTask)
			tenant.DELETE("/tasks/:task_id", h.Task.DeleteTask)

			tenant.POST("/tasks/:task_id/attachments", h.Attachment.AddAttachment)
			tenant.GET("/tasks/:task_id/attachments", h.Attachment.ListAttachments)
			tenant.DELETE("/tasks/:task_id/attachments/:attachment_id", h.Attachment.DeleteAttachment)
		}
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		err := errors.ErrNotFound("route", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, dto.ErrorResponse(err, c.GetString(middleware.ContextKeyTraceID)))
	})
}

// Start 启动 HTTP 服务器，阻塞直到服务器关闭
func (r *Router) Start() error {
	r.logger.Info(context.Background(), "Starting HTTP server", logger.Fields{"address": r.server.Addr})

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 优雅关闭 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	r.logger.Info(ctx, "Shutting down HTTP server")
	if err := r.server.Shutdown(ctx); err != nil {
		r.logger.Error(ctx, "Server forced to shutdown", err)
		return err
	}
	r.logger.Info(ctx, "HTTP server stopped")
	return nil
}

//Personal.AI order the ending
