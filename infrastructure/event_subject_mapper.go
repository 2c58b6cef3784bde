package infrastructure

import (
	"fmt"

	"mangaverse/domain/events"
)

var eventSubjects = map[events.EventType]string{
	events.EventTypeBalanceChange:      "settlement.balance.changed",
	events.EventTypeGameCompleted:      "settlement.game.completed",
	events.EventTypeRewardDistribution: "settlement.reward.distributed",
	events.EventTypeReferralGranted:    "settlement.referral.granted",
	events.EventTypeAirdropClaim:       "settlement.airdrop.claimed",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := eventSubjects[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("settlement.unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range eventSubjects {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{"settlement.>"}
}
