package service

import (
	"context"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/logger"
	"github.com/turtacn/esg/pkg/utils"
)

// ProgressWriter persists a tenant's progress metrics in one write.
type ProgressWriter interface {
	UpdateProgress(ctx context.Context, tenantID string, progress models.ProgressMetrics) error
}

// ProgressTracker keeps a tenant's data and evidence completion metrics in step
// with its tasks.
type ProgressTracker struct {
	logger logger.Logger
}

// NewProgressTracker creates a progress tracker.
func NewProgressTracker(log logger.Logger) *ProgressTracker {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &ProgressTracker{logger: log.WithComponent("progress_tracker")}
}

// Refresh recomputes and persists the tenant's progress metrics.
func (p *ProgressTracker) Refresh(ctx context.Context, tenantID string, tasks TaskSource, writer ProgressWriter) (models.ProgressMetrics, error) {
	inputs, err := tasks.ListScoringInputs(ctx, tenantID)
	if err != nil {
		return models.ProgressMetrics{}, err
	}

	progress := ComputeProgress(inputs)
	if err := writer.UpdateProgress(ctx, tenantID, progress); err != nil {
		p.logger.Error(ctx, "Failed to persist progress metrics", err, logger.Fields{"tenant_id": tenantID})
		return models.ProgressMetrics{}, err
	}

	p.logger.Debug(ctx, "Progress metrics updated", logger.Fields{
		"tenant_id":                      tenantID,
		"data_completion_percentage":     progress.DataCompletionPercentage,
		"evidence_completion_percentage": progress.EvidenceCompletionPercentage,
	})
	return progress, nil
}

// ComputeProgress derives completion metrics from the scoring view of every task.
// Every data-entry key is a field; fields counted as data points are completed.
// Expected files are the evidence target; registered attachments are uploads.
func ComputeProgress(inputs []models.ScoringInput) models.ProgressMetrics {
	var m models.ProgressMetrics
	for _, in := range inputs {
		m.TotalFields += len(in.DataEntries)
		m.CompletedFields += in.DataEntries.DataPoints()
		m.TotalEvidenceFiles += in.ExpectedFiles
		m.UploadedEvidenceFiles += in.AttachmentCount
	}
	m.DataCompletionPercentage = percentage(m.CompletedFields, m.TotalFields)
	m.EvidenceCompletionPercentage = percentage(m.UploadedEvidenceFiles, m.TotalEvidenceFiles)
	return m
}

// percentage returns part/total*100 rounded to one decimal, capped at 100.
func percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(part) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return utils.RoundTo1(pct)
}
