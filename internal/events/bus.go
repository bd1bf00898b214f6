package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ticketbook/achievement-engine/internal/logger"
)

type subscription struct {
	id      uint64
	handler Handler
}

// InProcessBus delivers events synchronously to the handlers registered in this
// process. Delivery is at most once per process; nothing is queued or persisted.
type InProcessBus struct {
	log *logger.Logger

	mu       sync.RWMutex
	nextID   uint64
	handlers map[Type][]subscription
}

func NewInProcessBus(log *logger.Logger) *InProcessBus {
	if log == nil {
		log = logger.Nop()
	}
	return &InProcessBus{
		log:      log.With("component", "event_bus"),
		handlers: make(map[Type][]subscription),
	}
}

func (b *InProcessBus) Subscribe(t Type, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[t]
		for i, s := range subs {
			if s.id == id {
				b.handlers[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish runs every handler subscribed to event.Type in registration order and
// returns once they have all finished. Handler errors and panics are logged.
func (b *InProcessBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := b.dispatch(ctx, s.handler, event); err != nil {
			b.log.Error("event handler failed",
				"event_id", event.ID,
				"event_type", string(event.Type),
				"user_id", event.UserID,
				"error", err,
			)
		}
	}
}

func (b *InProcessBus) dispatch(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, event)
}
