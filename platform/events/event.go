// Package events defines the event bus contract the bounded contexts
// communicate through. Publishers emit domain events (a follow-up scheduled,
// leads flipped overdue) without knowing who listens; the notification module
// and similar consumers subscribe by event name. The platform layer only
// carries the plumbing, never the events themselves.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event that crosses the bus.
type Event interface {
	// EventName identifies the event type and is the subscription key.
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp shared by all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt reports when the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events and routes them to subscribed handlers.
type Bus interface {
	// Publish delivers an event to every handler subscribed to its name.
	// Delivery is asynchronous; the caller does not wait.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers an event and waits for every handler, joining
	// their errors.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an event name, matching the
	// value the event's EventName returns.
	Subscribe(eventName string, handler Handler)
}
