// Package consumers contains Kafka consumers for background processing.
package consumers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/esg/internal/config"
	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/internal/domain/repository"
	"github.com/turtacn/esg/internal/infrastructure/audit"
	"github.com/turtacn/esg/pkg/errors"
	"github.com/turtacn/esg/pkg/logger"
)

// messageReader is the subset of *kafka.Reader the archiver uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditArchiver drains the audit topic into the audit_events table. When a
// signing key is configured, messages without a valid signature are dropped.
// AuditArchiver 将 Kafka 审计事件归档到数据库。
type AuditArchiver struct {
	reader     messageReader
	repo       repository.AuditRepository
	signingKey string
	logger     logger.Logger
}

// NewAuditArchiver creates an archiver for the configured audit topic.
func NewAuditArchiver(cfg config.KafkaConfig, signingKey string, repo repository.AuditRepository, log logger.Logger) *AuditArchiver {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.AuditTopic,
		GroupID:        cfg.AuditGroupID, // all archivers share the group
		MinBytes:       10e3,             // 10KB
		MaxBytes:       10e6,             // 10MB
		CommitInterval: time.Second,
	})
	return newAuditArchiver(reader, signingKey, repo, log)
}

func newAuditArchiver(reader messageReader, signingKey string, repo repository.AuditRepository, log logger.Logger) *AuditArchiver {
	return &AuditArchiver{
		reader:     reader,
		repo:       repo,
		signingKey: signingKey,
		logger:     log.WithComponent("audit_archiver"),
	}
}

// Run consumes until ctx is cancelled. Messages are committed once stored;
// poison messages are committed and skipped, storage failures are retried.
func (a *AuditArchiver) Run(ctx context.Context) error {
	a.logger.Info(ctx, "Starting audit archiver")
	for {
		msg, err := a.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				a.logger.Info(ctx, "Stopping audit archiver")
				return nil
			}
			a.logger.Error(ctx, "Failed to fetch message from kafka", err)
			continue
		}

		event, err := a.decode(msg)
		if err != nil {
			a.logger.Warn(ctx, "Dropping audit message", logger.Fields{
				"error":     err.Error(),
				"partition": msg.Partition,
				"offset":    msg.Offset,
			})
			a.commit(ctx, msg)
			continue
		}

		if err := a.repo.Save(ctx, event); err != nil {
			// Not committed, so the message is redelivered.
			a.logger.Error(ctx, "Failed to archive audit event", err, logger.Fields{"event_id": event.EventID})
			continue
		}
		a.commit(ctx, msg)
	}
}

func (a *AuditArchiver) decode(msg kafka.Message) (*models.AuditEvent, error) {
	if a.signingKey != "" {
		signature, ok := header(msg, audit.SignatureHeader)
		if !ok || !audit.VerifyAuditPayload(msg.Value, signature, a.signingKey) {
			return nil, errors.New("missing or invalid signature")
		}
	}

	var event models.AuditEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, err
	}
	if event.EventID == "" || event.TenantID == "" {
		return nil, errors.New("event_id and tenant_id are required")
	}
	return &event, nil
}

func (a *AuditArchiver) commit(ctx context.Context, msg kafka.Message) {
	if err := a.reader.CommitMessages(ctx, msg); err != nil {
		a.logger.Error(ctx, "Failed to commit kafka offset", err)
	}
}

// Close shuts down the reader.
func (a *AuditArchiver) Close() error {
	return a.reader.Close()
}

func header(msg kafka.Message, key string) (string, bool) {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value), true
		}
	}
	return "", false
}

//Personal.AI order the ending
