// Package events provides a typed in-process event bus built on kelindar/event.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(LinkStateChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches by concrete type, so each variant needs its
	// own Publish call
	switch e := ev.(type) {
	case LinkStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case LayoutReloadedEvent:
		event.Publish(b.dispatcher, e)
	case TickOverrunEvent:
		event.Publish(b.dispatcher, e)
	case DecoderResyncEvent:
		event.Publish(b.dispatcher, e)
	case FrameCommittedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type determines which events it receives. Returns an
// unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e LinkStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LinkStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LayoutReloadedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(TickOverrunEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DecoderResyncEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FrameCommittedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// No-op unsubscribe for unrecognized handler types
		return func() {}
	}
}
