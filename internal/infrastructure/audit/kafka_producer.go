package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/esg/internal/config"
	"github.com/turtacn/esg/internal/domain/models"
	"github.com/turtacn/esg/pkg/logger"
)

// SignatureHeader carries the HMAC of the message value when a signing key is configured.
const SignatureHeader = "x-esg-signature"

// messageWriter is the subset of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer is a Kafka-backed implementation of the AuditService.
// Messages are keyed by tenant so one tenant's events stay ordered within a partition.
type KafkaProducer struct {
	writer     messageWriter
	signingKey string
	logger     logger.Logger
}

// NewKafkaProducer creates a new KafkaProducer.
func NewKafkaProducer(cfg config.KafkaConfig, signingKey string, log logger.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
	}
	return newKafkaProducer(writer, signingKey, log)
}

func newKafkaProducer(writer messageWriter, signingKey string, log logger.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer:     writer,
		signingKey: signingKey,
		logger:     log.WithComponent("KafkaProducer"),
	}
}

// LogEvent sends an audit event to the Kafka topic.
func (p *KafkaProducer) LogEvent(ctx context.Context, event models.AuditEvent) error {
	bytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal audit event", err)
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.TenantID),
		Value: bytes,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	if p.signingKey != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: SignatureHeader, Value: []byte(signPayload(bytes, p.signingKey))})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(ctx, "failed to write message to Kafka", err, logger.Fields{
			"event_id":   event.EventID,
			"event_type": string(event.EventType),
		})
		return err
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
