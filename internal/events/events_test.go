package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fixflow/fixflow/internal/db/models"
)

func TestEventSystem(t *testing.T) {
	t.Run("Subscribe and Publish", func(t *testing.T) {
		// Reset handlers for clean test environment
		handlers = make(map[EventType][]Handler)
		eventChan = make(chan Event, EventChannelSize)

		var wg sync.WaitGroup
		wg.Add(1)

		var receivedEvent Event
		testHandler := func(ctx context.Context, event Event) error {
			receivedEvent = event
			wg.Done()
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Start(ctx)
		Subscribe(EventJobTransitioned, testHandler)

		testEvent := Event{
			Type:       EventJobTransitioned,
			JobID:      123,
			CenterID:   7,
			CustomerID: 42,
			OldStatus:  models.JobStatusInRepair,
			NewStatus:  models.JobStatusRepairCompleted,
		}
		Publish(testEvent)

		// Wait for handler to process event with timeout
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Test timed out waiting for event handler")
		}

		assert.Equal(t, testEvent.Type, receivedEvent.Type)
		assert.Equal(t, testEvent.JobID, receivedEvent.JobID)
		assert.Equal(t, testEvent.OldStatus, receivedEvent.OldStatus)
		assert.Equal(t, testEvent.NewStatus, receivedEvent.NewStatus)
	})

	t.Run("Multiple Handlers", func(t *testing.T) {
		handlers = make(map[EventType][]Handler)
		eventChan = make(chan Event, EventChannelSize)

		var wg sync.WaitGroup
		wg.Add(2)

		handlerCalls := make(map[string]bool)
		var mu sync.Mutex

		handler1 := func(ctx context.Context, event Event) error {
			mu.Lock()
			handlerCalls["handler1"] = true
			mu.Unlock()
			wg.Done()
			return nil
		}

		handler2 := func(ctx context.Context, event Event) error {
			mu.Lock()
			handlerCalls["handler2"] = true
			mu.Unlock()
			wg.Done()
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Start(ctx)
		Subscribe(EventPayoutCompleted, handler1)
		Subscribe(EventPayoutCompleted, handler2)

		Publish(Event{Type: EventPayoutCompleted, PayoutID: 456, CenterID: 7})

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Test timed out waiting for event handlers")
		}

		mu.Lock()
		assert.True(t, handlerCalls["handler1"], "Handler 1 should have been called")
		assert.True(t, handlerCalls["handler2"], "Handler 2 should have been called")
		mu.Unlock()
	})

	t.Run("Different Event Types", func(t *testing.T) {
		handlers = make(map[EventType][]Handler)
		eventChan = make(chan Event, EventChannelSize)

		var wg sync.WaitGroup
		wg.Add(2)

		receivedEvents := make(map[EventType]bool)
		var mu sync.Mutex

		transitionHandler := func(ctx context.Context, event Event) error {
			mu.Lock()
			receivedEvents[EventJobTransitioned] = true
			mu.Unlock()
			wg.Done()
			return nil
		}

		disputeHandler := func(ctx context.Context, event Event) error {
			mu.Lock()
			receivedEvents[EventPayoutDisputed] = true
			mu.Unlock()
			wg.Done()
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Start(ctx)
		Subscribe(EventJobTransitioned, transitionHandler)
		Subscribe(EventPayoutDisputed, disputeHandler)

		Publish(Event{Type: EventJobTransitioned, JobID: 1})
		Publish(Event{Type: EventPayoutDisputed, PayoutID: 2})

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Test timed out waiting for event handlers")
		}

		mu.Lock()
		assert.True(t, receivedEvents[EventJobTransitioned], "Transition event should have been handled")
		assert.True(t, receivedEvents[EventPayoutDisputed], "Dispute event should have been handled")
		mu.Unlock()
	})
}
