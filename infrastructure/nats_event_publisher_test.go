package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mangaverse/domain/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessagePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestNATSEventPublisher_PublishWrapsEnvelope(t *testing.T) {
	client := &fakeMessagePublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

	event := events.GameCompletedEvent{
		GameID: uuid.New(),
		Winner: "winner-wallet",
		Loser:  "loser-wallet",
		Stake:  decimal.RequireFromString("1.5"),
		Round:  2,
	}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, client.subjects, 1)
	assert.Equal(t, "settlement.game.completed", client.subjects[0])

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(client.payloads[0], &envelope))
	assert.Equal(t, string(events.EventTypeGameCompleted), envelope.EventType)
	assert.Equal(t, "mangaverse-settlement", envelope.SourceService)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)

	var payload events.GameCompletedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event.GameID, payload.GameID)
	assert.True(t, payload.Stake.Equal(event.Stake))
}

func TestNATSEventPublisher_LocalHandlers(t *testing.T) {
	client := &fakeMessagePublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

	var received []events.Event
	publisher.RegisterLocalHandler(events.EventTypeReferralGranted, func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})
	publisher.RegisterLocalHandler(events.EventTypeReferralGranted, func(ctx context.Context, event events.Event) error {
		return errors.New("handler failure does not stop publishing")
	})

	event := events.ReferralGrantedEvent{InviterID: uuid.New(), InviteeID: uuid.New()}
	require.NoError(t, publisher.Publish(event))
	require.NoError(t, publisher.Publish(events.BalanceChangeEvent{AccountID: uuid.New()}))

	assert.Equal(t, []events.Event{event}, received)
	assert.Len(t, client.subjects, 2)
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	publisher := NewNATSEventPublisher(&fakeMessagePublisher{err: errors.New("timeout")}, NewEventSubjectMapper())
	assert.Error(t, publisher.Publish(events.BalanceChangeEvent{}))

	quiet := NewNATSEventPublisher(&fakeMessagePublisher{err: errors.New("nats: no response from stream")}, NewEventSubjectMapper())
	assert.NoError(t, quiet.Publish(events.BalanceChangeEvent{}))
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "settlement.balance.changed"},
		{events.GameCompletedEvent{}, "settlement.game.completed"},
		{events.RewardDistributionEvent{}, "settlement.reward.distributed"},
		{events.ReferralGrantedEvent{}, "settlement.referral.granted"},
		{events.AirdropClaimEvent{}, "settlement.airdrop.claimed"},
	}
	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			subject := mapper.MapEventToSubject(tt.event)
			assert.Equal(t, tt.subject, subject)
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(subject))
		})
	}
}

func TestNoopEventPublisher_RunsLocalHandlers(t *testing.T) {
	publisher := NewNoopEventPublisher()
	calls := 0
	publisher.RegisterLocalHandler(events.EventTypeAirdropClaim, func(ctx context.Context, event events.Event) error {
		calls++
		return nil
	})

	require.NoError(t, publisher.Publish(events.AirdropClaimEvent{}))
	require.NoError(t, publisher.Publish(events.BalanceChangeEvent{}))
	assert.Equal(t, 1, calls)
}
