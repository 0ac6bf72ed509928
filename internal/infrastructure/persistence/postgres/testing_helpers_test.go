package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/logger"
)

// newTestDB opens an isolated in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	conn := NewDBConnectionFromGorm(db, logger.NewNoopLogger())
	require.NoError(t, conn.AutoMigrate(context.Background()))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, name string) *models.Tenant {
	t.Helper()
	tenant := models.NewTenant(uuid.NewString(), name)
	require.NoError(t, NewTenantRepository(db, logger.NewNoopLogger()).Save(context.Background(), tenant))
	return tenant
}

func seedTask(t *testing.T, db *gorm.DB, tenantID, category string, entries models.DataEntries) *models.Task {
	t.Helper()
	task := &models.Task{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Title:       category + " task",
		Category:    category,
		DataEntries: entries,
		CreatedAt:   time.Now().UTC(),
	}
	task.ApplyDefaults()
	require.NoError(t, NewTaskRepository(db, logger.NewNoopLogger()).Save(context.Background(), task))
	return task
}

func seedAttachment(t *testing.T, db *gorm.DB, task *models.Task) *models.Attachment {
	t.Helper()
	attachment := &models.Attachment{
		ID:               uuid.NewString(),
		TaskID:           task.ID,
		TenantID:         task.TenantID,
		OriginalFilename: "evidence.pdf",
		FileSize:         1024,
		MimeType:         "application/pdf",
		AttachmentType:   "evidence",
		UploadedAt:       time.Now().UTC(),
	}
	require.NoError(t, NewAttachmentRepository(db, logger.NewNoopLogger()).Save(context.Background(), attachment))
	return attachment
}

