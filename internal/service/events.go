package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventModelOpened    EventType = "model_opened"
	EventModelReloaded  EventType = "model_reloaded"
	EventModelSaved     EventType = "model_saved"
	EventModelClosed    EventType = "model_closed"
	EventGraphChanged   EventType = "graph_changed"
	EventExternalChange EventType = "external_change"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[int]chan<- Event
	next        int
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[int]chan<- Event),
	}
}

// Subscribe adds a subscriber to receive events. The returned function removes it.
func (eb *EventBus) Subscribe(ch chan<- Event) func() {
	eb.mu.Lock()
	id := eb.next
	eb.next++
	eb.subscribers[id] = ch
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		delete(eb.subscribers, id)
		eb.mu.Unlock()
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
