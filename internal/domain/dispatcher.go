package domain

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"cableops.io/dashboard/internal/pkg/logger"
)

// EventHandler processes a domain event. Handlers run on the caller's
// goroutine; a handler that needs the database reads the open transaction
// from ctx.
type EventHandler func(ctx context.Context, event *DomainEvent) error

// EventDispatcher routes domain events to registered handlers.
type EventDispatcher struct {
	handlers map[EventType][]EventHandler
	mu       sync.RWMutex
}

// NewEventDispatcher creates a new EventDispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[EventType][]EventHandler),
	}
}

// Register registers a handler for a specific event type.
func (d *EventDispatcher) Register(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// HasHandlers reports whether any handler is registered for eventType.
func (d *EventDispatcher) HasHandlers(eventType EventType) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[eventType]) > 0
}

// Dispatch calls every handler for the event in registration order.
// All handlers run even after a failure; the first error is returned so
// the caller can roll back its transaction.
func (d *EventDispatcher) Dispatch(ctx context.Context, event *DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.EventType]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		logger.Debug("No handlers registered for event type",
			zap.String("event_type", string(event.EventType)),
			zap.String("event_id", event.EventID),
		)
		return nil
	}

	var firstErr error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			logger.Error("Event handler failed",
				zap.String("event_type", string(event.EventType)),
				zap.String("aggregate_id", event.AggregateID),
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("handler for %s failed: %w", event.EventType, err)
			}
		}
	}

	return firstErr
}
