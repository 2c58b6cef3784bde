package infrastructure

import (
	"context"
	"sync"

	"mangaverse/domain/events"
)

// NoopEventPublisher drops events instead of sending them to a broker. Local
// handlers still run, so in-process consumers such as metrics keep working
// when NATS is disabled.
type NoopEventPublisher struct {
	mu            sync.RWMutex
	localHandlers map[events.EventType][]LocalEventHandler
}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{localHandlers: make(map[events.EventType][]LocalEventHandler)}
}

// Publish runs local handlers and discards the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	n.mu.RLock()
	handlers := n.localHandlers[event.Type()]
	n.mu.RUnlock()
	invokeLocalHandlers(context.Background(), handlers, event)
	return nil
}

// RegisterLocalHandler registers a handler that will be invoked locally for events
func (n *NoopEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.localHandlers[eventType] = append(n.localHandlers[eventType], handler)
}

// LocalHandlerRegistrar is implemented by publishers that run in-process handlers
type LocalHandlerRegistrar interface {
	RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler)
}

// RegisterForAllEvents registers handler for every settlement event type
func RegisterForAllEvents(registrar LocalHandlerRegistrar, handler LocalEventHandler) {
	for eventType := range eventSubjects {
		registrar.RegisterLocalHandler(eventType, handler)
	}
}
