// Package postgres provides database connection management and GORM repositories for the ESG service.
// PostgreSQL connections are pooled with pgx; SQLite is supported for local runs and tests.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/esg/internal/config"
	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// DBConnection manages the database handle lifecycle.
// For PostgreSQL it owns a pgx connection pool that GORM runs on top of.
type DBConnection struct {
	db     *gorm.DB
	pool   *pgxpool.Pool
	config *config.DatabaseConfig
	logger logger.Logger
}

// NewDBConnection opens the configured database and performs an initial health check.
//
// Parameters:
//   - ctx: Context for connection timeout control
//   - cfg: Database configuration including driver, credentials and pool settings
//   - log: Logger instance for connection lifecycle events
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidRequest("database configuration is required")
	}
	log = log.WithComponent("database")

	gormCfg := &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	conn := &DBConnection{config: cfg, logger: log}

	switch cfg.Driver {
	case "sqlite":
		log.Info(ctx, "Opening SQLite database", logger.Fields{"path": cfg.SQLitePath})
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
		}
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY between transactions.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
		conn.db = db

	default:
		log.Info(ctx, "Initializing PostgreSQL connection pool", logger.Fields{
			"host":      cfg.Host,
			"port":      cfg.Port,
			"database":  cfg.Database,
			"max_conns": cfg.MaxConns,
			"min_conns": cfg.MinConns,
		})

		poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
		if err != nil {
			log.Error(ctx, "Failed to parse database connection string", err)
			return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
		}
		if cfg.MaxConns > 0 {
			poolConfig.MaxConns = int32(cfg.MaxConns)
		}
		if cfg.MinConns > 0 {
			poolConfig.MinConns = int32(cfg.MinConns)
		}
		if cfg.MaxConnLifetime > 0 {
			poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Minute
		}
		if cfg.MaxConnIdleTime > 0 {
			poolConfig.MaxConnIdleTime = time.Duration(cfg.MaxConnIdleTime) * time.Minute
		}

		timeout := time.Duration(cfg.ConnTimeout) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err != nil {
			log.Error(ctx, "Failed to create database connection pool", err)
			return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: stdlib.OpenDBFromPool(pool)}), gormCfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
		}
		conn.db = db
		conn.pool = pool
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := conn.AutoMigrate(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}

	log.Info(ctx, "Database connection initialized successfully", logger.Fields{"driver": cfg.Driver})
	return conn, nil
}

// NewDBConnectionFromGorm wraps an already opened GORM handle.
func NewDBConnectionFromGorm(db *gorm.DB, log logger.Logger) *DBConnection {
	return &DBConnection{db: db, config: &config.DatabaseConfig{}, logger: log.WithComponent("database")}
}

// DB returns the GORM handle used by repository implementations.
func (c *DBConnection) DB() *gorm.DB {
	return c.db
}

// AutoMigrate creates or updates the schema for every persisted model.
func (c *DBConnection) AutoMigrate(ctx context.Context) error {
	err := c.db.WithContext(ctx).AutoMigrate(
		&models.Tenant{},
		&models.Task{},
		&models.Attachment{},
		&models.AuditEvent{},
	)
	if err != nil {
		c.logger.Error(ctx, "Schema migration failed", err)
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}
	c.logger.Info(ctx, "Schema migration completed")
	return nil
}

// Ping verifies database connectivity and responsiveness.
func (c *DBConnection) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	startTime := time.Now()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		c.logger.Error(ctx, "Database ping failed", err)
		return fmt.Errorf("%w: %w", errors.ErrDatabaseOperation, err)
	}

	latency := time.Since(startTime)
	if latency > 100*time.Millisecond {
		c.logger.Warn(ctx, "High database latency detected", logger.Fields{
			"latency_ms":   latency.Milliseconds(),
			"threshold_ms": 100,
		})
	}
	return nil
}

// Close releases the database handle and, for PostgreSQL, the pgx pool.
func (c *DBConnection) Close() {
	if sqlDB, err := c.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if c.pool != nil {
		c.pool.Close()
	}
	c.logger.Info(context.Background(), "Database connection closed")
}

//Personal.AI order the ending
