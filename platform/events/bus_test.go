package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	Value int
}

func (e testEvent) EventName() string { return "test.event" }

func TestInMemoryBusPublishSyncDeliversInOrder(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var seen []int
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, event Event) error {
		seen = append(seen, event.(testEvent).Value)
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(_ context.Context, event Event) error {
		seen = append(seen, event.(testEvent).Value*10)
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), Value: 3}); err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(seen) != 2 || seen[0] != 3 || seen[1] != 30 {
		t.Fatalf("expected handlers [3 30], got %v", seen)
	}
}

func TestInMemoryBusPublishSyncReturnsFirstError(t *testing.T) {
	bus := NewInMemoryBus(nil)
	wantErr := errors.New("boom")

	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		return wantErr
	}))

	called := false
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		called = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if called {
		t.Fatal("second handler should not run after the first failed")
	}
}

func TestInMemoryBusPublishIgnoresUnknownEvent(t *testing.T) {
	bus := NewInMemoryBus(nil)
	// Must not panic or block with no subscribers.
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
}

func TestInMemoryBusPublishIsAsynchronous(t *testing.T) {
	bus := NewInMemoryBus(nil)
	done := make(chan struct{})

	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		close(done)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}
}
