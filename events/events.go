package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeQuestionCreated      EventType = "question_created"
	EventTypeVoteCast             EventType = "vote_cast"
	EventTypeQuestionResolved     EventType = "question_resolved"
	EventTypePredictionScored     EventType = "prediction_scored"
	EventTypeUserCreated          EventType = "user_created"
	EventTypeLeaderboardRefreshed EventType = "leaderboard_refreshed"
	EventTypeExpirySweepCompleted EventType = "expiry_sweep_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// QuestionCreatedEvent is emitted once a question row is committed
type QuestionCreatedEvent struct {
	QuestionID string    `json:"question_id"`
	CreatedBy  string    `json:"created_by"`
	EndTime    time.Time `json:"end_time"`
}

func (e QuestionCreatedEvent) Type() EventType {
	return EventTypeQuestionCreated
}

// VoteCastEvent represents a recorded vote, including switches and repeats
type VoteCastEvent struct {
	QuestionID string `json:"question_id"`
	UserID     string `json:"user_id"`
	Choice     string `json:"choice"`
	YesCount   int    `json:"yes_count"`
	NoCount    int    `json:"no_count"`
}

func (e VoteCastEvent) Type() EventType {
	return EventTypeVoteCast
}

// QuestionResolvedEvent represents the single successful resolution of a question
type QuestionResolvedEvent struct {
	QuestionID string    `json:"question_id"`
	Outcome    bool      `json:"outcome"`
	ResolvedBy string    `json:"resolved_by"`
	ResolvedAt time.Time `json:"resolved_at"`
	YesCount   int       `json:"yes_count"`
	NoCount    int       `json:"no_count"`
}

func (e QuestionResolvedEvent) Type() EventType {
	return EventTypeQuestionResolved
}

// PredictionScoredEvent represents one voter's counters being updated after a resolution
type PredictionScoredEvent struct {
	QuestionID string `json:"question_id"`
	ExternalID string `json:"external_id"`
	Correct    bool   `json:"correct"`
	XPAwarded  int64  `json:"xp_awarded"`
	NewXP      int64  `json:"new_xp"`
}

func (e PredictionScoredEvent) Type() EventType {
	return EventTypePredictionScored
}

// UserCreatedEvent represents a new player registration
type UserCreatedEvent struct {
	UserID      string `json:"user_id"`
	Platform    string `json:"platform"`
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// LeaderboardRefreshedEvent reports the result of one refresh attempt
type LeaderboardRefreshedEvent struct {
	Result  string `json:"result"` // "created", "updated", "skipped" or "failed"
	Entries int    `json:"entries"`
}

func (e LeaderboardRefreshedEvent) Type() EventType {
	return EventTypeLeaderboardRefreshed
}

// ExpirySweepCompletedEvent summarises one startup sweep
type ExpirySweepCompletedEvent struct {
	Total             int `json:"total"`
	WithResolveButton int `json:"with_resolve_button"`
	VotingOnly        int `json:"voting_only"`
	Failed            int `json:"failed"`
}

func (e ExpirySweepCompletedEvent) Type() EventType {
	return EventTypeExpirySweepCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu          sync.RWMutex
	handlers    map[EventType][]Handler
	allHandlers []Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// SubscribeAll adds a handler that receives every event type
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.allHandlers = append(b.allHandlers, handler)
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.Type()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.Type()]...)
	handlers = append(handlers, b.allHandlers...)
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Handlers run asynchronously so a slow subscriber never blocks the emitter
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush() {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events to main event bus")

	// Handlers outlive the transaction, so they get a fresh context
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for a commit
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
