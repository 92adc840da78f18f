// Package events provides the in-process event bus used to push state changes
// to attached UI clients (via the SSE stream) and to decouple modules from
// one another.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a category of event
type EventType string

const (
	// RaceStarted is published when a race begins
	RaceStarted EventType = "race.started"
	// RaceFrame is published on every animation frame with all positions
	RaceFrame EventType = "race.frame"
	// RaceFinished is published exactly once per race with the winner
	RaceFinished EventType = "race.finished"
	// RaceCancelled is published when a running race is cancelled
	RaceCancelled EventType = "race.cancelled"
	// ParticipantChanged is published on roster mutations
	ParticipantChanged EventType = "participant.changed"
	// SettingsChanged is published when a setting value is updated
	SettingsChanged EventType = "settings.changed"
	// HistoryCleared is published when the win history is wiped
	HistoryCleared EventType = "history.cleared"
)

// Event is a single published event
type Event struct {
	Type      EventType `json:"type"`
	Module    string    `json:"module"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data,omitempty"`
}

// Handler processes a published event. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(event *Event)

// subscription pairs a handler with its registration id so it can be removed
type subscription struct {
	id      int
	handler Handler
}

// Bus is a synchronous publish/subscribe bus. Subscriptions are per event
// type; publishing dispatches to every subscriber of that type in order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]subscription
	nextID   int
	log      zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]subscription),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for an event type. The returned function
// removes the subscription; transient subscribers (SSE clients) must call it
// on disconnect.
func (b *Bus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[eventType]
		for i, sub := range subs {
			if sub.id == id {
				b.handlers[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish dispatches an event to all subscribers of its type.
// A missing subscriber set is not an error; the event is simply dropped.
func (b *Bus) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[event.Type]))
	copy(subs, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(event)
	}
}

// Manager provides typed publish helpers over the bus so call sites don't
// assemble Event structs by hand.
type Manager struct {
	bus *Bus
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		log: log.With().Str("component", "event_manager").Logger(),
	}
}

// Publish publishes typed event data under the given module name
func (m *Manager) Publish(module string, data EventData) {
	m.bus.Publish(&Event{
		Type:      data.EventType(),
		Module:    module,
		Timestamp: time.Now(),
		Data:      data,
	})
}
