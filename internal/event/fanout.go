package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
)

const DefaultDispatchTimeout = 10 * time.Second

// Channel is one independent consumer of mutation events.
type Channel interface {
	Name() string
	Dispatch(ctx context.Context, ev MutationEvent) error
}

// Fanout delivers every mutation to all channels on detached goroutines.
// A failing or panicking channel is logged and never affects the others.
type Fanout struct {
	channels []Channel
	timeout  time.Duration
	logger   logger.ZapLogger
	now      func() time.Time

	wg sync.WaitGroup
}

func NewFanout(log logger.ZapLogger, timeout time.Duration, channels ...Channel) *Fanout {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Fanout{
		channels: channels,
		timeout:  timeout,
		logger:   log,
		now:      time.Now,
	}
}

// Publish snapshots item synchronously and returns before any channel runs.
func (f *Fanout) Publish(kind Kind, item *model.Item) {
	if item == nil {
		return
	}
	ev := NewMutationEvent(kind, item, f.now())

	for _, ch := range f.channels {
		f.wg.Add(1)
		go f.dispatch(ch, ev)
	}
}

func (f *Fanout) dispatch(ch Channel, ev MutationEvent) {
	defer f.wg.Done()

	log := f.logger.With(
		zap.String("channel", ch.Name()),
		zap.String("kind", string(ev.Kind)),
		zap.Int64("item_id", ev.Item.ID),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("event channel panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if err := ch.Dispatch(ctx, ev); err != nil {
		log.Error("failed to dispatch event", zap.Error(err))
		return
	}
	log.Debug("event dispatched")
}

// Wait blocks until every dispatch started so far has finished.
func (f *Fanout) Wait() {
	f.wg.Wait()
}
