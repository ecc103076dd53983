// Package pubsub provides a minimal generic publish/subscribe broker used to
// fan out service events (log messages, workspace lifecycle changes) to
// interested consumers.
package pubsub

import (
	"context"
	"sync"
)

const bufferSize = 64

type Broker[T any] struct {
	mu       sync.RWMutex
	subs     map[chan Event[T]]struct{}
	done     chan struct{}
	doneOnce sync.Once
}

func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{
		subs: make(map[chan Event[T]]struct{}),
		done: make(chan struct{}),
	}
}

// Subscribe returns a channel of events that is closed when ctx is cancelled
// or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	ch := make(chan Event[T], bufferSize)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish delivers an event to all current subscribers. Slow subscribers do
// not block the publisher; events past a full buffer are dropped.
func (b *Broker[T]) Publish(t EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	select {
	case <-b.done:
		return
	default:
	}

	for ch := range b.subs {
		select {
		case ch <- Event[T]{Type: t, Payload: payload}:
		default:
		}
	}
}

// Shutdown closes all subscriber channels. Idempotent.
func (b *Broker[T]) Shutdown() {
	b.doneOnce.Do(func() { close(b.done) })
}
