package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-player/internal/events"
	"github.com/SAP-F-2025/quiz-player/internal/repositories"
)

// EventConfig holds configuration for telemetry publishing
type EventConfig struct {
	Enabled        bool
	Publisher      string // comma separated: kafka, database, mock
	KafkaBrokers   string
	TelemetryTopic string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokers, ",")
}

// CreateEventPublisher creates an event publisher based on configuration.
// answerLogs may be nil when no database is configured.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger, answerLogs repositories.AnswerLogRepository) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	var publishers events.FanOutPublisher
	for _, kind := range strings.Split(c.Publisher, ",") {
		switch strings.TrimSpace(kind) {
		case "kafka":
			logger.Info("Creating Kafka event publisher",
				"brokers", c.KafkaBrokers,
				"topic", c.TelemetryTopic)

			p, err := events.NewKafkaEventPublisher(events.PublisherConfig{
				KafkaBrokers: c.GetKafkaBrokers(),
				TopicName:    c.TelemetryTopic,
				Logger:       logger,
			})
			if err != nil {
				_ = publishers.Close()
				return nil, err
			}
			publishers = append(publishers, p)
		case "database":
			if answerLogs == nil {
				_ = publishers.Close()
				return nil, fmt.Errorf("database event publisher requires DATABASE_URL")
			}
			logger.Info("Creating database event publisher")
			publishers = append(publishers, events.NewDatabaseEventPublisher(answerLogs))
		case "mock":
			logger.Info("Using mock event publisher")
			publishers = append(publishers, events.NewMockEventPublisher(logger))
		default:
			logger.Warn("Unknown event publisher type, skipping", "publisher", kind)
		}
	}

	switch len(publishers) {
	case 0:
		return events.NewMockEventPublisher(logger), nil
	case 1:
		return publishers[0], nil
	}
	return publishers, nil
}
