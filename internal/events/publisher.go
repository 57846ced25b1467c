package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// EventPublisher publishes status transition events to the notifications
// topic. Implementations must be safe for concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// slogAdapter bridges slog to watermill's logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a slogAdapter) Info(msg string, fields watermill.LogFields)  { a.logger.Info(msg, fieldsToArgs(fields)...) }
func (a slogAdapter) Debug(msg string, fields watermill.LogFields) { a.logger.Debug(msg, fieldsToArgs(fields)...) }
func (a slogAdapter) Trace(msg string, fields watermill.LogFields) { a.logger.Debug(msg, fieldsToArgs(fields)...) }
func (a slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return slogAdapter{logger: a.logger.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

// kafkaEventPublisher publishes events to Kafka via watermill.
type kafkaEventPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewKafkaEventPublisher creates a Kafka-backed publisher for the given
// brokers and topic.
func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) (EventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		slogAdapter{logger: logger},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &kafkaEventPublisher{publisher: publisher, topic: topic}, nil
}

func (p *kafkaEventPublisher) Publish(_ context.Context, event *Event) error {
	payload, err := event.Marshal()
	if err != nil {
		return err
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.Metadata.Set("event", event.Name)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Name, err)
	}
	return nil
}

func (p *kafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher records published events in memory. Used in tests and
// when no brokers are configured.
type MockEventPublisher struct {
	logger *slog.Logger

	mu     sync.Mutex
	events []*Event
	closed bool
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) Publish(_ context.Context, event *Event) error {
	payload, err := event.Marshal()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publisher closed")
	}
	p.events = append(p.events, event)
	p.logger.Debug("event published", "event", event.Name, "payload", string(payload))
	return nil
}

func (p *MockEventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Published returns a snapshot of the recorded events.
func (p *MockEventPublisher) Published() []*Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Event, len(p.events))
	copy(out, p.events)
	return out
}
