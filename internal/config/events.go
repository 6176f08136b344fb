package config

import (
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/events"
)

// EventConfig selects the event bus. Publisher is kafka, channel or memory.
type EventConfig struct {
	Enabled           bool
	Publisher         string
	KafkaBrokers      string
	NotificationTopic string
	AttemptTopic      string
}

func (c *EventConfig) GetKafkaBrokers() []string {
	return splitList(c.KafkaBrokers)
}

func (c *EventConfig) topics() events.Topics {
	return events.Topics{Notifications: c.NotificationTopic, Attempts: c.AttemptTopic}
}

// CreateEventPublisher builds the configured publisher. An unknown kind is a configuration error.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled")
		return events.DiscardPublisher{}, nil
	}

	switch c.Publisher {
	case "kafka":
		brokers := c.GetKafkaBrokers()
		if len(brokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is empty")
		}
		logger.Info("Publishing events to kafka", "brokers", brokers, "notification_topic", c.NotificationTopic, "attempt_topic", c.AttemptTopic)
		return events.NewKafkaPublisher(brokers, c.topics(), logger)
	case "channel":
		logger.Info("Publishing events in process")
		publisher, _ := events.NewChannelPublisher(c.topics(), logger)
		return publisher, nil
	case "memory":
		return events.NewMemoryPublisher(logger), nil
	}
	return nil, fmt.Errorf("unknown event publisher %q", c.Publisher)
}
