// Package broker publishes keyed payloads to a topic on one of the supported
// message brokers (Kafka, NATS, RabbitMQ).
package broker

import (
	"context"
	"fmt"
)

const (
	DriverKafka = "kafka"
	DriverNATS  = "nats"
	DriverAMQP  = "amqp"
	DriverNone  = "none"
)

// Publisher sends a single message to a topic. On NATS the topic is the
// subject, on RabbitMQ it is the routing key of the configured exchange.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
	Close() error
}

type Config struct {
	Driver string
	Kafka  KafkaConfig
	NATS   NATSConfig
	AMQP   AMQPConfig
}

// NewPublisher builds and connects the publisher selected by cfg.Driver.
func NewPublisher(ctx context.Context, cfg *Config) (Publisher, error) {
	switch cfg.Driver {
	case DriverKafka:
		return NewKafkaPublisher(cfg.Kafka), nil
	case DriverNATS:
		p := NewNATSPublisher(cfg.NATS)
		if err := p.Connect(ctx); err != nil {
			return nil, err
		}
		return p, nil
	case DriverAMQP:
		p := NewAMQPPublisher(cfg.AMQP)
		if err := p.Connect(ctx); err != nil {
			return nil, err
		}
		return p, nil
	case DriverNone, "":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown broker driver %q", cfg.Driver)
	}
}

// NopPublisher drops every message.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte, []byte) error { return nil }
func (NopPublisher) Close() error                                          { return nil }
