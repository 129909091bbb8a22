package broker

import (
	"context"
	"testing"
)

func TestNewPublisherNone(t *testing.T) {
	for _, driver := range []string{DriverNone, ""} {
		p, err := NewPublisher(context.Background(), &Config{Driver: driver})
		if err != nil {
			t.Fatalf("driver %q: %v", driver, err)
		}
		if _, ok := p.(NopPublisher); !ok {
			t.Fatalf("driver %q: got %T", driver, p)
		}
		if err := p.Publish(context.Background(), "catalog.item.created", nil, []byte("{}")); err != nil {
			t.Fatalf("nop publish: %v", err)
		}
	}
}

func TestNewPublisherUnknownDriver(t *testing.T) {
	if _, err := NewPublisher(context.Background(), &Config{Driver: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestKafkaPublisherReusesWriterPerTopic(t *testing.T) {
	p := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}})
	a := p.writer("catalog.item.created")
	b := p.writer("catalog.item.created")
	c := p.writer("catalog.item.deleted")
	if a != b || a == c {
		t.Fatalf("expected one writer per topic")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
