package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"lead_funnel_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))

	got := make(chan Event, 1)
	bus.Subscribe("thing.happened", HandlerFunc(func(ctx context.Context, e Event) error {
		got <- e
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "thing.happened"})

	select {
	case e := <-got:
		if e.EventName() != "thing.happened" {
			t.Errorf("event name = %q", e.EventName())
		}
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestPublishIgnoresUnsubscribedEvents(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	called := make(chan struct{}, 1)
	bus.Subscribe("a", HandlerFunc(func(ctx context.Context, e Event) error {
		called <- struct{}{}
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "b"})

	select {
	case <-called:
		t.Fatal("handler for a different event invoked")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishSyncPropagatesHandlerError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("test"))
	wantErr := errors.New("sink down")
	bus.Subscribe("x", HandlerFunc(func(ctx context.Context, e Event) error {
		return wantErr
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "x"}); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want handler error", err)
	}
}
