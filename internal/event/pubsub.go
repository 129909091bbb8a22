package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// TopicPublisher is satisfied by every broker.Publisher.
type TopicPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// PubSubChannel broadcasts events as structured CloudEvents on catalog.item.<kind>.
type PubSubChannel struct {
	publisher TopicPublisher
	source    string
}

func NewPubSubChannel(publisher TopicPublisher, source string) *PubSubChannel {
	if source == "" {
		source = "catalog-service"
	}
	return &PubSubChannel{publisher: publisher, source: source}
}

func (c *PubSubChannel) Name() string { return "pubsub" }

func (c *PubSubChannel) Dispatch(ctx context.Context, ev MutationEvent) error {
	ce := cloudevents.NewEvent()
	ce.SetID(uuid.NewString())
	ce.SetSource(c.source)
	ce.SetType(ev.Kind.Topic())
	ce.SetSubject(strconv.FormatInt(ev.Item.ID, 10))
	ce.SetTime(ev.Timestamp)
	if err := ce.SetData(cloudevents.ApplicationJSON, ev.Payload()); err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}
	if err := ce.Validate(); err != nil {
		return fmt.Errorf("invalid cloudevent: %w", err)
	}

	body, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("marshal cloudevent: %w", err)
	}

	key := []byte(strconv.FormatInt(ev.Item.ID, 10))
	return c.publisher.Publish(ctx, ev.Kind.Topic(), key, body)
}
