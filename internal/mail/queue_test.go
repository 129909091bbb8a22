package mail

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
)

func TestQueueIsFIFOAndUnbounded(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		if err := q.Enqueue(ctx, Message{Subject: fmt.Sprint(i)}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if q.Len() != 1000 {
		t.Fatalf("len %d", q.Len())
	}
	for i := 0; i < 1000; i++ {
		msg, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if msg.Subject != fmt.Sprint(i) {
			t.Fatalf("out of order: got %s want %d", msg.Subject, i)
		}
	}
}

func TestQueueDequeueWaitsForEnqueue(t *testing.T) {
	q := NewQueue()
	got := make(chan Message, 1)
	go func() {
		msg, err := q.Dequeue(context.Background())
		if err == nil {
			got <- msg
		}
	}()

	time.Sleep(20 * time.Millisecond)
	_ = q.Enqueue(context.Background(), Message{To: "a@example.com"})

	select {
	case msg := <-got:
		if msg.To != "a@example.com" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("dequeue did not wake up")
	}
}

func TestQueueCloseDrainsThenStops(t *testing.T) {
	q := NewQueue()
	ctx := context.Background()
	_ = q.Enqueue(ctx, Message{Subject: "last"})
	q.Close()

	if err := q.Enqueue(ctx, Message{}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
	if msg, err := q.Dequeue(ctx); err != nil || msg.Subject != "last" {
		t.Fatalf("expected queued message after close, got %+v %v", msg, err)
	}
	if _, err := q.Dequeue(ctx); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestQueueDequeueHonoursContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Dequeue(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type flakySender struct {
	mu   sync.Mutex
	sent []string
}

func (s *flakySender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch msg.Subject {
	case "fail":
		return errors.New("smtp 451")
	case "panic":
		panic("sender bug")
	}
	s.sent = append(s.sent, msg.Subject)
	return nil
}

func TestWorkerContinuesAfterFailures(t *testing.T) {
	q := NewQueue()
	sender := &flakySender{}
	w := NewWorker(q, sender, time.Second, logger.NewNop())

	ctx := context.Background()
	for _, s := range []string{"one", "fail", "two", "panic", "three"} {
		_ = q.Enqueue(ctx, Message{To: "ops@example.com", Subject: s})
	}
	q.Close()

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop after the queue drained")
	}

	if got := fmt.Sprint(sender.sent); got != "[one two three]" {
		t.Fatalf("sent %s", got)
	}
}

func TestWorkerStopsOnCancel(t *testing.T) {
	w := NewWorker(NewQueue(), &flakySender{}, time.Second, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker ignored cancellation")
	}
}
