package testhelpers

import (
	"context"
	"sync"

	"mangaverse/domain/events"
)

// RecordingPublisher buffers events like a transactional publisher and keeps
// every flushed event for assertions
type RecordingPublisher struct {
	mu        sync.Mutex
	pending   []events.Event
	Flushed   []events.Event
	Discarded int
}

// NewRecordingPublisher creates an empty recording publisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, event)
	return nil
}

func (p *RecordingPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Flushed = append(p.Flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *RecordingPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Discarded += len(p.pending)
	p.pending = nil
}

// FlushedOfType returns flushed events matching eventType
func (p *RecordingPublisher) FlushedOfType(eventType events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []events.Event
	for _, event := range p.Flushed {
		if event.Type() == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}
