package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type AMQPConfig struct {
	URL          string
	Exchange     string
	ExchangeType string
	ContentType  string
}

// AMQPPublisher publishes to a single exchange; the topic becomes the routing key.
type AMQPPublisher struct {
	config AMQPConfig
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func NewAMQPPublisher(cfg AMQPConfig) *AMQPPublisher {
	if cfg.ExchangeType == "" {
		cfg.ExchangeType = "topic"
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "application/json"
	}
	return &AMQPPublisher{config: cfg}
}

func (p *AMQPPublisher) Connect(ctx context.Context) error {
	conn, err := amqp.Dial(p.config.URL)
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if p.config.Exchange != "" {
		err := ch.ExchangeDeclare(
			p.config.Exchange,
			p.config.ExchangeType,
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return fmt.Errorf("declare exchange %s: %w", p.config.Exchange, err)
		}
	}

	p.mu.Lock()
	p.conn = conn
	p.ch = ch
	p.mu.Unlock()
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return errors.New("not connected to RabbitMQ")
	}

	msg := amqp.Publishing{
		ContentType:  p.config.ContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    string(key),
		Body:         value,
	}
	if err := p.ch.PublishWithContext(ctx, p.config.Exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("amqp publish to %s: %w", routingKey, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}
