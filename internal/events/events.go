package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventType identifies a domain event.
type EventType string

const (
	EventOrderCompleted EventType = "order.completed"
	EventOrderRefunded  EventType = "order.refunded"
	EventBidAccepted    EventType = "bid.accepted"
)

// Event is published synchronously inside the transaction that produced it.
type Event struct {
	Type    EventType
	OrgID   snowflake.ID
	Payload map[string]any
}

// Handler runs within the publisher's transaction. A returned error aborts
// that transaction.
type Handler func(ctx context.Context, tx *gorm.DB, evt Event) error

// Dispatcher routes events to registered handlers in registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	log      *zap.Logger
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[EventType][]Handler),
		log:      log.Named("events.dispatcher"),
	}
}

// Subscribe registers a handler for an event type.
func (d *Dispatcher) Subscribe(t EventType, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = append(d.handlers[t], h)
}

// Publish invokes every handler for the event within tx.
func (d *Dispatcher) Publish(ctx context.Context, tx *gorm.DB, evt Event) error {
	d.mu.RLock()
	handlers := d.handlers[evt.Type]
	d.mu.RUnlock()

	for i, h := range handlers {
		if err := h(ctx, tx, evt); err != nil {
			return fmt.Errorf("event %s handler %d: %w", evt.Type, i, err)
		}
	}
	d.log.Debug("published event",
		zap.String("type", string(evt.Type)),
		zap.Int("handlers", len(handlers)),
	)
	return nil
}
