package events

import (
	"testing"
	"time"
)

func TestSubscribePublish(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch := bus.Subscribe()

	event := NewWorkerConnectedEvent(1)
	bus.Publish(event)

	select {
	case got := <-ch:
		if got.Type != EventWorkerConnected {
			t.Errorf("expected type %s, got %s", EventWorkerConnected, got.Type)
		}
		if got.WorkerID != 1 {
			t.Errorf("expected worker 1, got %d", got.WorkerID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()

	if got := bus.SubscriberCount(); got != 2 {
		t.Fatalf("expected 2 subscribers, got %d", got)
	}

	bus.Publish(NewSnapshotVerifiedEvent(3, 10, 2))

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Data.Verified != 10 || got.Data.Skipped != 2 {
				t.Errorf("subscriber %d: unexpected data %+v", i, got.Data)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timed out", i)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	if got := bus.SubscriberCount(); got != 0 {
		t.Errorf("expected 0 subscribers, got %d", got)
	}

	// Channel must be closed after unsubscribe.
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}

func TestPublishNonBlocking(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	_ = bus.Subscribe()

	// Fill well past the buffer; Publish must never block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 500 {
			bus.Publish(NewWorkerClosedEvent(i, "closed_normal"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on full subscriber buffer")
	}
}

func TestMismatchEventPayload(t *testing.T) {
	event := NewMismatchDetectedEvent(2, 5, 10, 40020)

	if event.Type != EventMismatchDetected {
		t.Errorf("expected type %s, got %s", EventMismatchDetected, event.Type)
	}
	if event.Data.X != 5 || event.Data.Y != 10 {
		t.Errorf("expected coordinates (5,10), got (%d,%d)", event.Data.X, event.Data.Y)
	}
	if event.Data.Offset != 40020 {
		t.Errorf("expected offset 40020, got %d", event.Data.Offset)
	}
}
