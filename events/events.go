package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeWarningIssued   EventType = "warning_issued"
	EventTypeWarningsCleared EventType = "warnings_cleared"
	EventTypeGiveawayEnded   EventType = "giveaway_ended"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// WarningIssuedEvent is emitted after a warning has been stored
type WarningIssuedEvent struct {
	WarningID    int64
	GuildID      int64
	UserID       int64
	ModeratorID  int64
	Reason       string
	Count        int64
	LimitReached bool
}

func (e WarningIssuedEvent) Type() EventType {
	return EventTypeWarningIssued
}

// WarningsClearedEvent is emitted after a user's warnings were removed
type WarningsClearedEvent struct {
	GuildID     int64
	UserID      int64
	ModeratorID int64
	Removed     int64
}

func (e WarningsClearedEvent) Type() EventType {
	return EventTypeWarningsCleared
}

// GiveawayEndedEvent is emitted when a giveaway is closed or rerolled
type GiveawayEndedEvent struct {
	GiveawayID       int64
	GuildID          int64
	ChannelID        int64
	MessageID        *int64
	Prize            string
	Winners          []int64
	ParticipantCount int
	Reroll           bool
}

func (e GiveawayEndedEvent) Type() EventType {
	return EventTypeGiveawayEnded
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

// Emit publishes an event to all registered handlers. Each handler runs in its own
// goroutine and a panicking handler does not affect the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

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

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event on transactional bus")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	if b.real == nil {
		b.pending = nil
		return
	}

	// Handlers outlive the transaction, so they must not inherit its context
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
