package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"predictor/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

type fakeMessagePublisher struct {
	messages []publishedMessage
	err      error
}

func (f *fakeMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, publishedMessage{subject: subject, data: data})
	return nil
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) RecordNATSMessagePublished(eventType string) {
	r.counts[eventType]++
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
		ok      bool
	}{
		{events.QuestionCreatedEvent{}, "predictor.question.created", true},
		{events.VoteCastEvent{}, "predictor.vote.cast", true},
		{events.QuestionResolvedEvent{}, "predictor.question.resolved", true},
		{events.PredictionScoredEvent{}, "predictor.prediction.scored", true},
		{events.UserCreatedEvent{}, "predictor.user.created", true},
		{events.LeaderboardRefreshedEvent{}, "", false},
		{events.ExpirySweepCompletedEvent{}, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			subject, ok := mapper.MapEventToSubject(tt.event)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.subject, subject)

			if tt.ok {
				eventType, found := mapper.MapSubjectToEventType(subject)
				assert.True(t, found)
				assert.Equal(t, tt.event.Type(), eventType)
			}
		})
	}

	assert.Equal(t, []string{"predictor.>"}, mapper.StreamSubjects())
}

func TestNATSEventPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("wraps event in envelope", func(t *testing.T) {
		transport := &fakeMessagePublisher{}
		recorder := &countingRecorder{counts: map[string]int{}}
		publisher := NewNATSEventPublisher(transport, NewEventSubjectMapper(), recorder)
		publisher.now = func() time.Time { return fixed }

		event := events.VoteCastEvent{QuestionID: "q_1", UserID: "B", Choice: "no", YesCount: 0, NoCount: 1}
		require.NoError(t, publisher.Publish(ctx, event))

		require.Len(t, transport.messages, 1)
		assert.Equal(t, "predictor.vote.cast", transport.messages[0].subject)

		var envelope EventEnvelope
		require.NoError(t, json.Unmarshal(transport.messages[0].data, &envelope))
		assert.NotEmpty(t, envelope.EventID)
		assert.Equal(t, "vote_cast", envelope.EventType)
		assert.Equal(t, "predictor", envelope.SourceService)
		assert.True(t, fixed.Equal(envelope.Timestamp))

		var payload events.VoteCastEvent
		require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
		assert.Equal(t, event, payload)

		assert.Equal(t, 1, recorder.counts["vote_cast"])
	})

	t.Run("local events are not forwarded", func(t *testing.T) {
		transport := &fakeMessagePublisher{}
		publisher := NewNATSEventPublisher(transport, NewEventSubjectMapper(), nil)

		require.NoError(t, publisher.Publish(ctx, events.LeaderboardRefreshedEvent{Result: "updated"}))
		assert.Empty(t, transport.messages)
	})

	t.Run("transport failure is returned", func(t *testing.T) {
		transport := &fakeMessagePublisher{err: errors.New("no responders")}
		publisher := NewNATSEventPublisher(transport, NewEventSubjectMapper(), nil)

		err := publisher.Publish(ctx, events.QuestionCreatedEvent{QuestionID: "q_1"})
		assert.ErrorContains(t, err, "no responders")
	})
}

func TestNATSEventPublisher_Attach(t *testing.T) {
	bus := events.NewBus()
	delivered := make(chan publishedMessage, 1)
	transport := &channelPublisher{out: delivered}

	NewNATSEventPublisher(transport, NewEventSubjectMapper(), nil).Attach(bus)
	bus.Emit(context.Background(), events.QuestionResolvedEvent{QuestionID: "q_1", Outcome: true})

	select {
	case msg := <-delivered:
		assert.Equal(t, "predictor.question.resolved", msg.subject)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}
}

type channelPublisher struct {
	out chan publishedMessage
}

func (c *channelPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	c.out <- publishedMessage{subject: subject, data: data}
	return nil
}
