package pubsub

import (
	"context"
)

// Next blocks until an event arrives on ch. It returns false when ctx is
// cancelled or the channel is closed.
func Next[T any](ctx context.Context, ch <-chan Event[T]) (Event[T], bool) {
	select {
	case <-ctx.Done():
		return Event[T]{}, false
	case event, ok := <-ch:
		return event, ok
	}
}

// ContinuousListener keeps one broker subscription open across reads.
type ContinuousListener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewContinuousListener subscribes to broker until ctx is cancelled.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T]) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx: ctx,
		ch:  broker.Subscribe(ctx),
	}
}

// Next waits for the next event.
func (l *ContinuousListener[T]) Next() (Event[T], bool) {
	return Next(l.ctx, l.ch)
}

// Forward calls fn for every event until the subscription ends.
// It blocks, so callers usually run it in its own goroutine.
func (l *ContinuousListener[T]) Forward(fn func(Event[T])) {
	for {
		event, ok := l.Next()
		if !ok {
			return
		}
		fn(event)
	}
}
