package handle

import "fmt"

// ID is the identity of one native open call's result. It is only ever used
// as a map key; nothing in this module dereferences it.
// ID 0 is the null handle a failed open returns.
type ID uintptr

// Null is the failed-open handle.
const Null ID = 0

func (id ID) String() string {
	return fmt.Sprintf("%#x", uintptr(id))
}

// EventType identifies a registry lifecycle notification.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventRegistered:
		return "registered"
	case EventRemoved:
		return "removed"
	}
	return "unknown"
}

// Event represents a registry lifecycle event.
type Event struct {
	ID   ID
	Size int
	Type EventType
}

// Observer receives notifications about registry lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnHandleEvent calls f(e).
func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }
