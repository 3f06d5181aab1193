// Package events provides event handling functionality. State transitions
// commit first and publish here; handlers (notification dispatch and payout
// materialization triggers) run asynchronously and their failures are
// logged, never propagated back to the committed transition.
package events

import (
	"context"
	"sync"

	"github.com/fixflow/fixflow/internal/db/models"
	"github.com/fixflow/fixflow/internal/logger"
)

// EventType represents the type of lifecycle event
type EventType string

const (
	// EventJobTransitioned is emitted after every committed job status change
	EventJobTransitioned EventType = "job_transitioned"
	// EventQuoteIssued is emitted when a repair center issues a quote
	EventQuoteIssued EventType = "quote_issued"
	// EventPayoutCompleted is emitted when a payout record settles
	EventPayoutCompleted EventType = "payout_completed"
	// EventPayoutDisputed is emitted when a payout record is flagged disputed
	EventPayoutDisputed EventType = "payout_disputed"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a job or payout lifecycle event
type Event struct {
	Type       EventType           // The type of event
	JobID      uint                // The repair job, when job-scoped
	PayoutID   uint                // The payout record, when payout-scoped
	CenterID   uint                // The repair center involved
	CustomerID uint                // The customer involved
	OldStatus  models.JobStatus    // Job status before the transition
	NewStatus  models.JobStatus    // Job status after the transition
	Payout     models.PayoutStatus // Payout status after the change, when payout-scoped
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

var (
	// handlers is a map of event types to their handlers
	handlers = make(map[EventType][]Handler)
	// handlersMu is a mutex for the handlers map
	handlersMu sync.RWMutex
	// eventChan is a channel for events
	eventChan = make(chan Event, EventChannelSize)
)

// Subscribe registers a handler for a specific event type
func Subscribe(eventType EventType, handler Handler) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[eventType] = append(handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish sends an event to be processed
func Publish(event Event) {
	eventChan <- event
	logger.Debugf("Published event: %s (job: %d, payout: %d)", event.Type, event.JobID, event.PayoutID)
}

// Start starts the event processing loop
func Start(ctx context.Context) {
	go processEvents(ctx)
	logger.Info("Started event processing loop")
}

// processEvents handles events in the background
func processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-eventChan:
			handlersMu.RLock()
			eventHandlers := handlers[event.Type]
			handlersMu.RUnlock()

			// Process event with all registered handlers
			for _, handler := range eventHandlers {
				go func(h Handler, e Event) {
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s: %v", e.Type, err)
					}
				}(handler, event)
			}
		}
	}
}
