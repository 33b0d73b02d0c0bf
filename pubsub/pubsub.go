package pubsub

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"luxetravel/tracing"
)

// NewRedisPublisher is used when Redis is configured; events then survive the
// process and can be consumed by other instances.
func NewRedisPublisher(rdb *redis.Client, watermillLogger watermill.LoggerAdapter) (message.Publisher, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create redis publisher: %w", err)
	}

	return tracing.PublisherDecorator{Publisher: publisher}, nil
}

func NewRedisSubscriberConstructor(rdb *redis.Client, watermillLogger watermill.LoggerAdapter) SubscriberConstructor {
	return func(consumerGroup string) (message.Subscriber, error) {
		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        rdb,
			ConsumerGroup: consumerGroup,
		}, watermillLogger)
	}
}

// NewInMemoryPubSub is the default transport: a single gochannel pub/sub
// shared by the publisher and every subscriber.
func NewInMemoryPubSub(watermillLogger watermill.LoggerAdapter) (message.Publisher, SubscriberConstructor) {
	channel := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	constructor := func(string) (message.Subscriber, error) {
		return channel, nil
	}
	return tracing.PublisherDecorator{Publisher: channel}, constructor
}

// SubscriberConstructor builds one subscriber per handler, named by consumer
// group so redis streams can track per-handler offsets.
type SubscriberConstructor func(consumerGroup string) (message.Subscriber, error)

func NewEventProcessorConfig(constructor SubscriberConstructor, watermillLogger watermill.LoggerAdapter) cqrs.EventProcessorConfig {
	return cqrs.EventProcessorConfig{
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return constructor("luxetravel." + params.HandlerName)
		},
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return "events." + params.EventName, nil
		},
		Marshaler: cqrs.JSONMarshaler{
			GenerateName: cqrs.StructName,
		},
		Logger: watermillLogger,
	}
}
