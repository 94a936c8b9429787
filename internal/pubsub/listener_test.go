package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNext_ReceivesEvent(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(PhaseStartedEvent, "construct")

	event, ok := Next(ctx, ch)
	require.True(t, ok)
	require.Equal(t, "construct", event.Payload)
	require.Equal(t, PhaseStartedEvent, event.Type)
}

func TestNext_ContextCancelled(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)

	cancel()
	time.Sleep(20 * time.Millisecond) // Wait for cleanup

	_, ok := Next(ctx, ch)
	require.False(t, ok, "should stop when context cancelled")
}

func TestNext_ChannelClosed(t *testing.T) {
	ch := make(chan Event[string])
	close(ch)

	_, ok := Next(context.Background(), ch)
	require.False(t, ok, "should stop when channel closed")
}

func TestContinuousListener_Next(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewContinuousListener(ctx, broker)

	broker.Publish(CreatedEvent, 1)
	broker.Publish(ComponentBuiltEvent, 2)
	broker.Publish(FragmentSkippedEvent, 3)

	for _, want := range []struct {
		payload int
		typ     EventType
	}{{1, CreatedEvent}, {2, ComponentBuiltEvent}, {3, FragmentSkippedEvent}} {
		event, ok := listener.Next()
		require.True(t, ok)
		require.Equal(t, want.payload, event.Payload)
		require.Equal(t, want.typ, event.Type)
	}
}

func TestContinuousListener_Forward(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	listener := NewContinuousListener(ctx, broker)

	got := make(chan int, 4)
	done := make(chan struct{})
	go func() {
		listener.Forward(func(e Event[int]) { got <- e.Payload })
		close(done)
	}()

	broker.Publish(UpdatedEvent, 7)
	select {
	case v := <-got:
		require.Equal(t, 7, v)
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for forwarded event")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Forward did not return after cancel")
	}
}
