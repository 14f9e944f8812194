// internal/events/bus.go
package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TypePrintJob is published once per finished print, drawer, raw or test job
const TypePrintJob = "print_job"

// Event represents a system event
type Event struct {
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// Bus fans events out to subscribers without ever blocking the publisher
type Bus struct {
	subscribers map[string]map[int]chan Event
	nextID      int
	events      chan Event
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewBus creates a new event bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string]map[int]chan Event),
		events:      make(chan Event, 256),
		logger:      logger,
	}
}

// Run distributes published events until ctx is done
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.events:
			b.distribute(event)
		}
	}
}

// Publish queues event, dropping it when the bus is full
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case b.events <- event:
	default:
		b.logger.Warn("Event bus full, dropping event", zap.String("event_type", event.Type))
	}
}

// Subscribe returns a channel of events of eventType and a func that cancels the subscription
func (b *Bus) Subscribe(eventType string, buffer int) (<-chan Event, func()) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	id := b.nextID
	b.nextID++
	if b.subscribers[eventType] == nil {
		b.subscribers[eventType] = make(map[int]chan Event)
	}
	b.subscribers[eventType][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mutex.Lock()
			defer b.mutex.Unlock()
			delete(b.subscribers[eventType], id)
			close(ch)
		})
	}
}

func (b *Bus) distribute(event Event) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	for _, subscriber := range b.subscribers[event.Type] {
		select {
		case subscriber <- event:
		default:
			// slow subscriber, skip
		}
	}
}
