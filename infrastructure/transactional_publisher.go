package infrastructure

import (
	"context"
	"sync"

	"mangaverse/domain/events"
	"mangaverse/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// TransactionalPublisher holds events until flush, then hands them to the
// real publisher. Pending events are dropped on rollback.
type TransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	mu            sync.Mutex
	pending       []events.Event
}

// NewTransactionalPublisher creates a new transactional publisher
func NewTransactionalPublisher(realPublisher interfaces.EventPublisher) *TransactionalPublisher {
	return &TransactionalPublisher{
		realPublisher: realPublisher,
		pending:       make([]events.Event, 0),
	}
}

// Publish stores an event in the pending queue without immediately publishing
func (p *TransactionalPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"pendingCount": len(p.pending),
	}).Debug("Adding event to transactional publisher pending queue")

	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes all pending events. Call it after the transaction commits.
func (p *TransactionalPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	pending := p.pending
	p.pending = make([]events.Event, 0)
	p.mu.Unlock()

	log.WithField("pendingEventCount", len(pending)).Debug("Flushing pending events")

	for _, event := range pending {
		if err := p.realPublisher.Publish(event); err != nil {
			// Keep going so one failure does not drop the remaining events
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}
	return nil
}

// Discard clears all pending events without publishing them
func (p *TransactionalPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()

	log.WithField("discardedEventCount", len(p.pending)).Debug("Discarding pending events")
	p.pending = p.pending[:0]
}
