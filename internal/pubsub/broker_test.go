package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker[string]()
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	b.Publish(CreatedEvent, "hello")

	select {
	case ev := <-ch:
		assert.Equal(t, CreatedEvent, ev.Type)
		assert.Equal(t, "hello", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBrokerSubscriberCancellation(t *testing.T) {
	b := NewBroker[int]()
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "channel should close after cancellation")

	// Publishing after the subscriber left must not panic or block.
	b.Publish(UpdatedEvent, 1)
}

func TestBrokerShutdownIdempotent(t *testing.T) {
	b := NewBroker[int]()

	ctx := context.Background()
	ch := b.Subscribe(ctx)

	b.Shutdown()
	b.Shutdown()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	b.Publish(UpdatedEvent, 1) // dropped silently after shutdown
}
