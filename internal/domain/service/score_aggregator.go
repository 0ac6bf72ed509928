package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/constants"
	"github.com/turtacn/esg/pkg/logger"
	"github.com/turtacn/esg/pkg/utils"
)

// Scoring weights and caps.
const (
	WeightEnvironmental = 0.4
	WeightSocial        = 0.3
	WeightGovernance    = 0.3

	PointsPerDataEntry  = 10.0
	DataScoreCap        = 50.0
	PointsPerAttachment = 15.0
	FileScoreCap        = 50.0
	CategoryScoreCap    = 100.0
	MeterReadingBonus   = 15.0
)

// Category keywords matched case-insensitively as substrings of a task category.
const (
	KeywordEnvironmental = "environmental"
	KeywordSocial        = "social"
	KeywordGovernance    = "governance"
)

// TaskSource lists the scoring view of every task of a tenant.
type TaskSource interface {
	ListScoringInputs(ctx context.Context, tenantID string) ([]models.ScoringInput, error)
}

// MeterReadingSource returns tenant-wide sums of meter readings.
type MeterReadingSource interface {
	AggregateMeterReadings(ctx context.Context, tenantID string) (models.MeterReadings, error)
}

// ScoreWriter persists the four score fields of a tenant in one write.
type ScoreWriter interface {
	UpdateScores(ctx context.Context, tenantID string, scores models.ESGScores) error
}

// ScoreStore bundles the collaborators of one recomputation. Callers bind all
// three to the same transaction as the mutation that triggered it.
type ScoreStore struct {
	Tasks  TaskSource
	Meters MeterReadingSource
	Scores ScoreWriter
}

// ScoreAggregator derives a tenant's environmental, social, governance and
// overall scores from its tasks and persists them.
// ScoreAggregator 根据租户任务计算并持久化 ESG 评分。
type ScoreAggregator struct {
	tracer  trace.Tracer
	metrics ScoreMetrics
	logger  logger.Logger
}

// NewScoreAggregator creates an aggregator. A nil tracer falls back to the
// global provider and nil metrics disables instrumentation.
func NewScoreAggregator(tracer trace.Tracer, metrics ScoreMetrics, log logger.Logger) *ScoreAggregator {
	if tracer == nil {
		tracer = otel.Tracer("esg/score-aggregator")
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &ScoreAggregator{
		tracer:  tracer,
		metrics: metrics,
		logger:  log.WithComponent("score_aggregator"),
	}
}

// Recompute reads the tenant's tasks, computes the four scores and persists them.
// Task contents never cause an error; read and persistence failures are returned
// unchanged so the caller's transaction can roll back.
func (a *ScoreAggregator) Recompute(ctx context.Context, tenantID string, store ScoreStore, trigger constants.ScoreTrigger) (models.ESGScores, error) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "esg.score.recompute", trace.WithAttributes(
		attribute.String("tenant.id", tenantID),
		attribute.String("trigger", string(trigger)),
	))
	defer span.End()

	scores, err := a.recompute(ctx, tenantID, store)

	if a.metrics != nil {
		a.metrics.RecordScoreRecompute(string(trigger), time.Since(start), err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Error(ctx, "Score recomputation failed", err, logger.Fields{
			"tenant_id": tenantID,
			"trigger":   string(trigger),
		})
		return models.ESGScores{}, err
	}

	span.SetAttributes(
		attribute.Float64("score.environmental", scores.Environmental),
		attribute.Float64("score.social", scores.Social),
		attribute.Float64("score.governance", scores.Governance),
		attribute.Float64("score.overall", scores.Overall),
	)
	a.logger.Info(ctx, "ESG scores updated", logger.Fields{
		"tenant_id":           tenantID,
		"trigger":             string(trigger),
		"environmental_score": scores.Environmental,
		"social_score":        scores.Social,
		"governance_score":    scores.Governance,
		"overall_esg_score":   scores.Overall,
		"latency_ms":          time.Since(start).Milliseconds(),
	})
	return scores, nil
}

func (a *ScoreAggregator) recompute(ctx context.Context, tenantID string, store ScoreStore) (models.ESGScores, error) {
	inputs, err := store.Tasks.ListScoringInputs(ctx, tenantID)
	if err != nil {
		return models.ESGScores{}, err
	}

	var meters models.MeterReadings
	if len(inputs) > 0 {
		meters, err = store.Meters.AggregateMeterReadings(ctx, tenantID)
		if err != nil {
			return models.ESGScores{}, err
		}
	}

	scores := ComputeScores(inputs, meters)
	if err := store.Scores.UpdateScores(ctx, tenantID, scores); err != nil {
		return models.ESGScores{}, err
	}
	return scores, nil
}

// ComputeScores is the pure scoring function. With no tasks every score is 0
// and an empty bucket scores 0 regardless of meter readings.
// The overall score is the weighted sum of the already rounded category scores,
// so overall == round(0.4*E + 0.3*S + 0.3*G, 1) holds for the stored values.
func ComputeScores(inputs []models.ScoringInput, meters models.MeterReadings) models.ESGScores {
	if len(inputs) == 0 {
		return models.ESGScores{}
	}

	var env, soc, gov []models.ScoringInput
	for _, in := range inputs {
		category := strings.ToLower(in.Category)
		if strings.Contains(category, KeywordEnvironmental) {
			env = append(env, in)
		}
		if strings.Contains(category, KeywordSocial) {
			soc = append(soc, in)
		}
		if strings.Contains(category, KeywordGovernance) {
			gov = append(gov, in)
		}
	}

	// The meter bonus only lifts a non-empty environmental bucket.
	environmental := CategoryScore(env)
	if len(env) > 0 && meters.AnyPositive() {
		environmental = minFloat(environmental+MeterReadingBonus, CategoryScoreCap)
	}

	scores := models.ESGScores{
		Environmental: utils.RoundTo1(environmental),
		Social:        utils.RoundTo1(CategoryScore(soc)),
		Governance:    utils.RoundTo1(CategoryScore(gov)),
	}
	scores.Overall = OverallScore(scores.Environmental, scores.Social, scores.Governance)
	return scores
}

// OverallScore weights the three category scores and rounds to one decimal.
func OverallScore(environmental, social, governance float64) float64 {
	return utils.RoundTo1(WeightEnvironmental*environmental + WeightSocial*social + WeightGovernance*governance)
}

// CategoryScore averages the per-task scores of a bucket, capped at 100.
// An empty bucket scores 0.
func CategoryScore(bucket []models.ScoringInput) float64 {
	if len(bucket) == 0 {
		return 0
	}
	total := 0.0
	for _, in := range bucket {
		total += TaskScore(in)
	}
	return minFloat(total/float64(len(bucket)), CategoryScoreCap)
}

// TaskScore is min(50, 10*data points) + min(50, 15*attachments).
func TaskScore(in models.ScoringInput) float64 {
	dataScore := minFloat(float64(in.DataEntries.DataPoints())*PointsPerDataEntry, DataScoreCap)
	fileScore := minFloat(float64(in.AttachmentCount)*PointsPerAttachment, FileScoreCap)
	return dataScore + fileScore
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
