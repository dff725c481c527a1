// Package tracking abstracts the marketing analytics sink behind a single
// injected interface. The wizard only ever calls Tracker; where the events
// end up (log, tag manager bridge, both) is wiring in the composition root.
package tracking

import (
	"context"

	"lead_funnel_backend/platform/events"
	"lead_funnel_backend/platform/logger"
)

// EventName is the bus topic all funnel tracking events publish under.
const EventName = "funnel.tracked"

// Tracker records a named marketing event with its properties.
type Tracker interface {
	Track(ctx context.Context, event string, props map[string]any)
}

// Event is a tracked funnel event as published on the event bus.
type Event struct {
	events.BaseEvent
	Name  string         `json:"name"`
	Props map[string]any `json:"props"`
}

// EventName implements events.Event.
func (e Event) EventName() string {
	return EventName
}

// BusTracker publishes tracking events on the in-process event bus.
type BusTracker struct {
	bus events.Bus
}

// NewBusTracker creates a Tracker backed by the event bus.
func NewBusTracker(bus events.Bus) *BusTracker {
	return &BusTracker{bus: bus}
}

// Track implements Tracker. Publishing is asynchronous; tracking never
// blocks or fails a wizard operation.
func (t *BusTracker) Track(ctx context.Context, event string, props map[string]any) {
	t.bus.Publish(ctx, Event{
		BaseEvent: events.NewBaseEvent(),
		Name:      event,
		Props:     props,
	})
}

// NewLogHandler returns a bus handler that writes tracking events to the
// structured log.
func NewLogHandler(log *logger.Logger) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		tracked, ok := event.(Event)
		if !ok {
			return nil
		}
		log.Info("funnel_event", "event", tracked.Name, "props", tracked.Props)
		return nil
	})
}

// Noop is a Tracker that discards events; used in tests.
type Noop struct{}

// Track implements Tracker.
func (Noop) Track(context.Context, string, map[string]any) {}
