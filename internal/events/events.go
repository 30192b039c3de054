// Package events provides the event bus that state containers publish to.
//
// Two kinds of subscribers are supported. Listeners registered with Listen
// are called synchronously on the publishing goroutine, in registration
// order, before Publish returns. Channel subscribers (SubscribeAll) receive
// every event through a buffered channel; when a buffer is full the event is
// dropped for that subscriber and counted.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sofiamatics/hospdir/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// NewBaseEvent stamps an event of the given type with the current time.
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{EventType: eventType, Time: time.Now()}
}

// Listener is a synchronous event callback. It must return quickly.
type Listener func(Event)

type listenerEntry struct {
	id uint64
	fn Listener
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	all           []chan Event // Subscribers to all events
	listeners     map[EventType][]listenerEntry
	nextID        uint64
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		all:        make([]chan Event, 0),
		listeners:  make(map[EventType][]listenerEntry),
		bufferSize: bufferSize,
	}
}

// Listen registers a synchronous listener for an event type. The returned
// function removes it; calling it more than once is harmless.
func (eb *EventBus) Listen(eventType EventType, fn Listener) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed || fn == nil {
		return func() {}
	}

	eb.nextID++
	id := eb.nextID
	eb.listeners[eventType] = append(eb.listeners[eventType], listenerEntry{id: id, fn: fn})

	return func() { eb.removeListener(eventType, id) }
}

func (eb *EventBus) removeListener(eventType EventType, id uint64) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	entries := eb.listeners[eventType]
	for i, entry := range entries {
		if entry.id == id {
			// keep registration order for the remaining listeners
			kept := make([]listenerEntry, 0, len(entries)-1)
			kept = append(kept, entries[:i]...)
			kept = append(kept, entries[i+1:]...)
			eb.listeners[eventType] = kept
			return
		}
	}
}

// ListenerCount returns the number of synchronous listeners for an event type.
func (eb *EventBus) ListenerCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.listeners[eventType])
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish delivers an event to every listener of its type and to every
// channel subscriber.
// Listeners run synchronously after the bus lock is released, so a listener
// may itself publish or (un)subscribe.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	if eb.closed {
		eb.mu.RUnlock()
		return
	}

	entries := eb.listeners[event.Type()]
	listeners := make([]Listener, len(entries))
	for i, entry := range entries {
		listeners[i] = entry.fn
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
	eb.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true
	eb.listeners = make(map[EventType][]listenerEntry)

	for _, ch := range eb.all {
		close(ch)
	}
}

// UnsubscribeAll removes a channel returned by SubscribeAll. The channel is
// not closed; events already buffered stay readable.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
