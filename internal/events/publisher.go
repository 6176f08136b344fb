package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	metaEventType    = "event_type"
	metaPartitionKey = "partition_key"
)

// EventPublisher hands events to whatever bus is configured.
type EventPublisher interface {
	Publish(ctx context.Context, event *NotificationEvent) error
	Close() error
}

// Topics routes each event family to its own topic.
type Topics struct {
	Notifications string
	Attempts      string
}

func (t Topics) For(eventType EventType) string {
	if strings.HasPrefix(string(eventType), "attempt.") && t.Attempts != "" {
		return t.Attempts
	}
	return t.Notifications
}

// BusPublisher publishes through a Watermill publisher.
type BusPublisher struct {
	publisher message.Publisher
	topics    Topics
	logger    *slog.Logger
}

func NewBusPublisher(publisher message.Publisher, topics Topics, logger *slog.Logger) *BusPublisher {
	return &BusPublisher{publisher: publisher, topics: topics, logger: logger}
}

// NewKafkaPublisher keys Kafka messages by recipient or quiz so related events stay ordered.
func NewKafkaPublisher(brokers []string, topics Topics, logger *slog.Logger) (*BusPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.NewWithPartitioningMarshaler(partitionKeyOf),
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return NewBusPublisher(publisher, topics, logger), nil
}

// NewChannelPublisher keeps events in process. Messages without a subscriber are dropped.
func NewChannelPublisher(topics Topics, logger *slog.Logger) (*BusPublisher, *gochannel.GoChannel) {
	channel := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))
	return NewBusPublisher(channel, topics, logger), channel
}

func partitionKeyOf(_ string, msg *message.Message) (string, error) {
	return msg.Metadata.Get(metaPartitionKey), nil
}

// NewMessage encodes event as JSON and copies its routing fields into metadata.
func NewMessage(ctx context.Context, event *NotificationEvent) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(metaEventType, string(event.Type))
	msg.Metadata.Set(metaPartitionKey, event.PartitionKey())
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.UTC().Format(time.RFC3339))
	return msg, nil
}

func (p *BusPublisher) Publish(ctx context.Context, event *NotificationEvent) error {
	msg, err := NewMessage(ctx, event)
	if err != nil {
		return err
	}

	topic := p.topics.For(event.Type)
	if err := p.publisher.Publish(topic, msg); err != nil {
		p.logger.Error("Failed to publish event", "event_id", event.ID, "event_type", event.Type, "topic", topic, "error", err)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("Published event", "event_id", event.ID, "event_type", event.Type, "topic", topic)
	return nil
}

func (p *BusPublisher) Close() error {
	return p.publisher.Close()
}

// MemoryPublisher records events instead of sending them. Set Err to make every publish fail.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []NotificationEvent
	Err    error
	logger *slog.Logger
}

func NewMemoryPublisher(logger *slog.Logger) *MemoryPublisher {
	return &MemoryPublisher{logger: logger}
}

func (m *MemoryPublisher) Publish(_ context.Context, event *NotificationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, *event)
	m.logger.Debug("Recorded event", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

// Published returns a copy of the recorded events in publish order.
func (m *MemoryPublisher) Published() []NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]NotificationEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MemoryPublisher) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}

// DiscardPublisher drops every event. Used when publishing is switched off.
type DiscardPublisher struct{}

func (DiscardPublisher) Publish(context.Context, *NotificationEvent) error { return nil }
func (DiscardPublisher) Close() error                                      { return nil }
