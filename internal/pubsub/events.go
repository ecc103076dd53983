package pubsub

import "context"

type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event is a generic notification carried by a Broker.
type Event[T any] struct {
	Type    EventType
	Payload T
}

type Suscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}
