package event

import (
	"context"
	"log/slog"

	"github.com/OlegEV/moysklad-autoproduction/pkg/kafka"
	"github.com/OlegEV/moysklad-autoproduction/pkg/logger"
)

// Kafka topics for replenishment outcomes.
const (
	TopicProcessingCreated = "autoproduction.processing.created"
	TopicLineFailed        = "autoproduction.line.failed"
)

const source = "autoproduction"

// ProcessingCreated is published when a production operation has been
// created and confirmed for a document position.
type ProcessingCreated struct {
	DocumentID     string  `json:"document_id"`
	DocumentName   string  `json:"document_name"`
	ProcessingID   string  `json:"processing_id"`
	ProcessingName string  `json:"processing_name"`
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	Quantity       float64 `json:"quantity"`
}

// LineFailed is published when a document position could not be
// replenished.
type LineFailed struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	ProductID    string `json:"product_id,omitempty"`
	ProductName  string `json:"product_name,omitempty"`
	Reason       string `json:"reason"`
}

// Producer publishes replenishment outcome events. Publishing is
// best-effort: a nil Producer or a broker failure never fails document
// processing.
type Producer struct {
	kafka  *kafka.Producer
	logger *slog.Logger
}

// NewProducer wraps a Kafka producer for outcome events.
func NewProducer(p *kafka.Producer, l *slog.Logger) *Producer {
	return &Producer{kafka: p, logger: l}
}

// PublishProcessingCreated emits a processing-created event.
func (p *Producer) PublishProcessingCreated(ctx context.Context, payload ProcessingCreated) {
	p.publish(ctx, TopicProcessingCreated, "processing.created", payload.DocumentID, payload)
}

// PublishLineFailed emits a line-failed event.
func (p *Producer) PublishLineFailed(ctx context.Context, payload LineFailed) {
	p.publish(ctx, TopicLineFailed, "line.failed", payload.DocumentID, payload)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, documentID string, payload any) {
	if p == nil || p.kafka == nil {
		return
	}

	evt, err := kafka.NewEvent(eventType, documentID, source, payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		p.logger.WarnContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
	}
}
