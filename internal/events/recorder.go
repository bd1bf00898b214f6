package events

import (
	"context"
	"sync"
)

// Recorder is a Bus that only remembers what was published. It lets producer
// code be exercised without wiring any listeners.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Subscribe(Type, Handler) func() { return func() {} }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
