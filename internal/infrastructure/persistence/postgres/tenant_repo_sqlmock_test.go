package postgres

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestTenantRepository_UpdateScoresPropagatesDriverError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTenantRepository(db, logger.NewNoopLogger())
	driverErr := stderrors.New("connection reset by peer")

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tenants" SET`).WillReturnError(driverErr)
	mock.ExpectRollback()

	err := repo.UpdateScores(context.Background(), "tenant-1", models.ESGScores{Environmental: 50, Overall: 20})

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDatabaseOperation)
	assert.ErrorIs(t, err, driverErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepository_UpdateScoresSingleStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTenantRepository(db, logger.NewNoopLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tenants" SET .*"environmental_score".*"governance_score".*"overall_esg_score".*"social_score"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateScores(context.Background(), "tenant-1", models.ESGScores{Environmental: 50, Social: 10, Governance: 5, Overall: 24.5})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepository_UpdateProgressMissingTenant(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTenantRepository(db, logger.NewNoopLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tenants" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateProgress(context.Background(), "missing", models.ProgressMetrics{})

	assert.True(t, errors.IsNotFoundError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
