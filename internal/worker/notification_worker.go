package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/vendorx/marketplace/internal/events"
)

// ErrQueueFull is returned to the publisher when the worker cannot keep up.
var ErrQueueFull = errors.New("notification queue full")

// Notifier delivers notifications for a set of event types.
type Notifier interface {
	EventTypes() []events.EventType
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves notification delivery off the request path.
// Events are queued by the dispatcher subscription and handled by a single
// goroutine.
type NotificationWorker struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan events.Event

	stopOnce sync.Once
	done     chan struct{}
}

// NewNotificationWorker builds a worker with a queue of size events.
func NewNotificationWorker(notifier Notifier, logger *zap.Logger, size int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 64
	}
	return &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan events.Event, size),
		done:     make(chan struct{}),
	}
}

// Attach subscribes the worker to every event type the notifier handles.
func (w *NotificationWorker) Attach(dispatcher events.Dispatcher) {
	for _, eventType := range w.notifier.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn("dropping notification", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
		return ErrQueueFull
	}
}

// Start consumes the queue until Stop is called. Handling uses ctx rather
// than the publisher's request context, which is gone by then.
func (w *NotificationWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for event := range w.queue {
			if err := w.notifier.Handle(ctx, event); err != nil {
				w.logger.Error("notification failed", zap.String("event_id", event.ID), zap.Error(err))
			}
		}
	}()
}

// Stop closes the queue and waits for queued events to drain. Events
// published after Stop panic, so stop the HTTP server first.
func (w *NotificationWorker) Stop() {
	w.stopOnce.Do(func() { close(w.queue) })
	<-w.done
}
