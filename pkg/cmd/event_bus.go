package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/funildev/funil/pkg/channels/kafka"
	"github.com/funildev/funil/pkg/eventbus"
)

// NewEventBus creates an event bus instance based on the provider.
// kafka publishes to the cluster named by KAFKA_BROKERS; memory keeps
// events in process for local development and tests.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "funil")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	case "memory":
		channel := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))

		return eventbus.NewWatermillEventBus(channel, channel)
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
