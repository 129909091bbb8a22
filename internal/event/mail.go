package event

import (
	"context"

	"github.com/fekuna/omnipos-catalog-service/internal/mail"
)

// MailEnqueuer accepts a message for later delivery without blocking on SMTP.
type MailEnqueuer interface {
	Enqueue(ctx context.Context, msg mail.Message) error
}

type MailRenderer interface {
	Render(to string, n mail.Notification) (mail.Message, error)
}

// MailChannel renders a notification and hands it to the mail worker's queue.
type MailChannel struct {
	renderer MailRenderer
	queue    MailEnqueuer
	to       string
}

func NewMailChannel(renderer MailRenderer, queue MailEnqueuer, to string) *MailChannel {
	return &MailChannel{renderer: renderer, queue: queue, to: to}
}

func (c *MailChannel) Name() string { return "mail" }

func (c *MailChannel) Dispatch(ctx context.Context, ev MutationEvent) error {
	msg, err := c.renderer.Render(c.to, mail.Notification{
		Event:     ev.Kind.Method(),
		ID:        ev.Item.ID,
		Name:      ev.Item.Name,
		Category:  ev.Item.Category,
		Price:     ev.Item.Price,
		Timestamp: ev.Timestamp,
	})
	if err != nil {
		return err
	}
	return c.queue.Enqueue(ctx, msg)
}
