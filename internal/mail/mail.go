package mail

import "context"

type Message struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}
