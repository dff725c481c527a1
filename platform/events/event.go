// Package events carries application events between packages without
// coupling publishers to their consumers. Funnel tracking hangs off this
// bus; domain packages only publish.
package events

import (
	"context"
	"time"
)

// Event is what travels over the bus.
type Event interface {
	// EventName identifies the event type; handlers subscribe by it.
	EventName() string
	// OccurredAt is the moment the event was raised.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp; concrete events embed it.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

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

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to its handlers without waiting on them.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and blocks until every handler ran,
	// returning the first handler error.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an event name, the value the
	// event's EventName returns.
	Subscribe(eventName string, handler Handler)
}
