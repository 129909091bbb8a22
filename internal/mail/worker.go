package mail

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
)

// Worker drains the queue one message at a time. A failed send is logged
// and dropped.
type Worker struct {
	queue       *Queue
	sender      Sender
	sendTimeout time.Duration
	logger      logger.ZapLogger
}

func NewWorker(queue *Queue, sender Sender, sendTimeout time.Duration, log logger.ZapLogger) *Worker {
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &Worker{
		queue:       queue,
		sender:      sender,
		sendTimeout: sendTimeout,
		logger:      log,
	}
}

// Start runs until ctx is cancelled or the queue is closed and drained.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("mail worker started")
	defer w.logger.Info("mail worker stopped")

	for {
		msg, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				return
			}
			w.logger.Error("failed to dequeue mail", zap.Error(err))
			continue
		}
		w.send(ctx, msg)
	}
}

func (w *Worker) send(ctx context.Context, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("mail sender panicked", zap.Any("panic", r), zap.String("to", msg.To))
		}
	}()

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.sendTimeout)
	defer cancel()

	if err := w.sender.Send(sendCtx, msg); err != nil {
		w.logger.Error("failed to send mail",
			zap.Error(err),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return
	}
	w.logger.Debug("mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
}
