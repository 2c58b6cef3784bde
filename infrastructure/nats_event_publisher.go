package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"mangaverse/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// EventEnvelope wraps every event published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// messagePublisher is the subset of NATSClient the publisher needs
type messagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// LocalEventHandler handles events inside the publishing process
type LocalEventHandler func(context.Context, events.Event) error

// NATSEventPublisher implements the EventPublisher interface using NATS
type NATSEventPublisher struct {
	client        messagePublisher
	subjectMapper *EventSubjectMapper
	mu            sync.RWMutex
	localHandlers map[events.EventType][]LocalEventHandler
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(client messagePublisher, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		client:        client,
		subjectMapper: subjectMapper,
		localHandlers: make(map[events.EventType][]LocalEventHandler),
	}
}

// Publish publishes an event to NATS using the appropriate subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	invokeLocalHandlers(ctx, p.handlersFor(event.Type()), event)

	subject := p.subjectMapper.MapEventToSubject(event)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "mangaverse-settlement",
		Payload:       payload,
	}
	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := p.client.Publish(ctx, subject, envelopeData); err != nil {
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

// RegisterLocalHandler registers a handler that will be invoked locally for events
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalEventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(p.localHandlers[eventType]),
	}).Info("Registered local event handler")
}

func (p *NATSEventPublisher) handlersFor(eventType events.EventType) []LocalEventHandler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.localHandlers[eventType]
}

// EnsureDomainEventStream ensures the settlement stream exists with the correct subjects
func (p *NATSEventPublisher) EnsureDomainEventStream(client *NATSClient) error {
	return client.EnsureStream(domainEventStream, p.subjectMapper.GetAllSubjects())
}

func invokeLocalHandlers(ctx context.Context, handlers []LocalEventHandler, event events.Event) {
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// Local handler errors never block publishing
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Local event handler failed")
		}
	}
}
