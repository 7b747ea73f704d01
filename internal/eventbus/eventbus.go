// ABOUTME: Typed event bus delivering loop outcomes to observers in subscription order
// ABOUTME: A panicking handler is logged and skipped so one observer cannot stop the loop

package eventbus

import (
	"sync"

	"github.com/mauromedda/concierge-go/internal/log"
)

// Handler is a callback function for events.
type Handler[T any] func(T)

type subscription[T any] struct {
	id      int
	handler Handler[T]
}

// Bus is a typed event bus that delivers events to registered handlers.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   []subscription[T]
	nextID int
}

// New creates a new event bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers a handler and returns an unsubscribe function.
// Calling the returned function more than once is harmless.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription[T]{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish sends an event to all registered handlers synchronously, in the
// order they subscribed. It returns how many handlers completed without panic.
func (b *Bus[T]) Publish(event T) int {
	b.mu.RLock()
	snapshot := make([]Handler[T], len(b.subs))
	for i, s := range b.subs {
		snapshot[i] = s.handler
	}
	b.mu.RUnlock()

	delivered := 0
	for _, h := range snapshot {
		if deliver(h, event) {
			delivered++
		}
	}
	return delivered
}

func deliver[T any](h Handler[T], event T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("eventbus: handler panic: %v", r)
			ok = false
		}
	}()
	h(event)
	return true
}

// Count returns the number of registered handlers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
