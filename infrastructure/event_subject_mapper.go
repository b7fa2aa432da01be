package infrastructure

import (
	"predictor/events"
)

// EventSubjectPrefix is the root of every subject this service publishes to
const EventSubjectPrefix = "predictor"

var eventSubjects = map[events.EventType]string{
	events.EventTypeQuestionCreated:  EventSubjectPrefix + ".question.created",
	events.EventTypeVoteCast:         EventSubjectPrefix + ".vote.cast",
	events.EventTypeQuestionResolved: EventSubjectPrefix + ".question.resolved",
	events.EventTypePredictionScored: EventSubjectPrefix + ".prediction.scored",
	events.EventTypeUserCreated:      EventSubjectPrefix + ".user.created",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects.
// Operational events such as leaderboard refreshes have no subject and stay local.
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject returns the subject for an event and whether it is forwarded at all
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) (string, bool) {
	subject, ok := eventSubjects[event.Type()]
	return subject, ok
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) (events.EventType, bool) {
	for eventType, s := range eventSubjects {
		if s == subject {
			return eventType, true
		}
	}
	return "", false
}

// StreamSubjects returns the wildcard the event stream is bound to
func (m *EventSubjectMapper) StreamSubjects() []string {
	return []string{EventSubjectPrefix + ".>"}
}
