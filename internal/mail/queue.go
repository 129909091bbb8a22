package mail

import (
	"context"
	"errors"
	"sync"
)

var ErrQueueClosed = errors.New("mail queue closed")

// Queue is an unbounded FIFO of outbound messages. Enqueue never blocks.
type Queue struct {
	mu      sync.Mutex
	backlog []Message
	notify  chan struct{}
	closed  bool
}

func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Enqueue appends msg and wakes the consumer.
func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.backlog = append(q.backlog, msg)
	q.mu.Unlock()

	q.wake()
	return nil
}

// Dequeue blocks until a message is available, the queue is closed and
// drained, or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (Message, error) {
	for {
		q.mu.Lock()
		if len(q.backlog) > 0 {
			msg := q.backlog[0]
			q.backlog[0] = Message{}
			q.backlog = q.backlog[1:]
			more := len(q.backlog) > 0
			q.mu.Unlock()
			if more {
				q.wake()
			}
			return msg, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return Message{}, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-q.notify:
		}
	}
}

// Close stops intake. Messages already queued can still be dequeued.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
