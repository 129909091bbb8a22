package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSConfig struct {
	URL            string
	Name           string
	ConnectTimeout time.Duration
	FlushTimeout   time.Duration
}

type NATSPublisher struct {
	config NATSConfig
	mu     sync.Mutex
	conn   *nats.Conn
}

func NewNATSPublisher(cfg NATSConfig) *NATSPublisher {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = time.Second
	}
	return &NATSPublisher{config: cfg}
}

func (p *NATSPublisher) Connect(ctx context.Context) error {
	opts := []nats.Option{nats.Timeout(p.config.ConnectTimeout)}
	if p.config.Name != "" {
		opts = append(opts, nats.Name(p.config.Name))
	}
	conn, err := nats.Connect(p.config.URL, opts...)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()
	return nil
}

// Publish ignores key; NATS has no message keys.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, _ []byte, value []byte) error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if conn == nil {
		return errors.New("not connected to NATS")
	}
	if err := conn.Publish(subject, value); err != nil {
		return fmt.Errorf("nats publish to %s: %w", subject, err)
	}
	if err := conn.FlushTimeout(p.config.FlushTimeout); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	return nil
}
