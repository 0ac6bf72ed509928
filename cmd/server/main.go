package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/esg/internal/bootstrap"
	"github.com/turtacn/esg/internal/config"
	"github.com/turtacn/esg/internal/infrastructure/monitoring"
	"github.com/turtacn/esg/pkg/logger"
)

func main() {
	// Load config
	loader := config.NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize service", err)
	}

	// 日志级别热更新
	loader.Watch(func(next *config.Config) {
		if err := appLogger.SetLevel(next.Log.Level); err != nil {
			appLogger.Warn(context.Background(), "Ignoring invalid log level", logger.Fields{"level": next.Log.Level})
			return
		}
		appLogger.Info(context.Background(), "Log level updated", logger.Fields{"level": next.Log.Level})
	}, func(err error) {
		appLogger.Error(context.Background(), "Config reload rejected", err)
	})

	router := container.Router()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(router.Start)
	g.Go(func() error {
		<-gctx.Done()

		period := time.Duration(cfg.Server.ShutdownPeriod) * time.Second
		if period <= 0 {
			period = 30 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), period)
		defer cancel()

		serverErr := router.Stop(shutdownCtx)
		if err := container.Close(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "Failed to release resources", err)
		}
		return serverErr
	})

	if err := g.Wait(); err != nil {
		appLogger.Error(context.Background(), "Server exited with error", err)
		return
	}
	appLogger.Info(context.Background(), "Server stopped")
}

//Personal.AI order the ending
