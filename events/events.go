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
	EventTypeScoreChanged   EventType = "score_changed"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeScoresReset    EventType = "scores_reset"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ScoreChangedEvent represents a committed score change
type ScoreChangedEvent struct {
	ChatID    int64
	AccountID int64
	Username  string
	Delta     int64
	NewScore  int64
	ActorName string
}

func (e ScoreChangedEvent) Type() EventType {
	return EventTypeScoreChanged
}

// AccountCreatedEvent represents a participant seen for the first time in a chat
type AccountCreatedEvent struct {
	ChatID         int64
	AccountID      int64
	ExternalUserID int64
	Username       string
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// ScoresResetEvent represents a chat-wide score reset
type ScoresResetEvent struct {
	ChatID  int64
	ResetAt time.Time
}

func (e ScoresResetEvent) Type() EventType {
	return EventTypeScoresReset
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
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
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers.
// Handlers run asynchronously so a slow subscriber never blocks the engine.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// flushes them to the real bus only after the database commit succeeds.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
// Events are emitted on a background context so they outlive the
// transaction's context.
func (b *TransactionalBus) Flush(ctx context.Context) {
	for _, ev := range b.pending {
		b.real.Emit(context.Background(), ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
