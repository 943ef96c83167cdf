package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	Value string
}

func (testEvent) EventName() string { return "test.event" }

func TestPublishSyncRunsHandlersInOrder(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var order []string
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		order = append(order, "first")
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		order = append(order, "second")
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handler order = %v, want [first second]", order)
	}
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)

	errA := errors.New("handler a failed")
	errB := errors.New("handler b failed")
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error { return errA }))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error { return nil }))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error { return errB }))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("err = %v, want both handler errors joined", err)
	}
}

func TestPublishDeliversAsynchronously(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	var got string
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		defer wg.Done()
		got = e.(testEvent).Value
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), Value: "payload"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
	if got != "payload" {
		t.Errorf("handler received %q, want %q", got, "payload")
	}
}

func TestPublishOutlivesCallerContext(t *testing.T) {
	bus := NewInMemoryBus(nil)

	ctxErr := make(chan error, 1)
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, e Event) error {
		ctxErr <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent()})

	select {
	case err := <-ctxErr:
		if err != nil {
			t.Errorf("handler context already cancelled: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestPublishSyncWithoutSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)
	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Errorf("PublishSync with no subscribers: %v", err)
	}
}
