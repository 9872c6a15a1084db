package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	eventSource  = "enrollment-service"
	eventVersion = "1.0"
)

// KafkaEventPublisher publishes events through watermill's Kafka transport.
type KafkaEventPublisher struct {
	publisher   message.Publisher
	topicPrefix string
	logger      *slog.Logger
}

// NewKafkaEventPublisher connects to the given brokers.
func NewKafkaEventPublisher(brokers []string, topicPrefix string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher:   publisher,
		topicPrefix: topicPrefix,
		logger:      logger,
	}, nil
}

// NewEvent builds the standard envelope around a payload.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Publish marshals the event and sends it to <prefix>.<topic>.
func (p *KafkaEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	fullTopic := topic
	if p.topicPrefix != "" {
		fullTopic = p.topicPrefix + "." + topic
	}

	if err := p.publisher.Publish(fullTopic, msg); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", fullTopic, err)
	}

	p.logger.Debug("event published", "topic", fullTopic, "event_id", event.ID, "event_type", event.Type)
	return nil
}

// Close shuts down the underlying publisher.
func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}
