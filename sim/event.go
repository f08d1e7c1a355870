package sim

import (
	"math"
	"time"
)

// VTimeInSec defines the time in the simulated space in the unit of second
type VTimeInSec float64

// Seconds converts a wall-clock duration into simulated time.
func Seconds(d time.Duration) VTimeInSec {
	return VTimeInSec(d.Seconds())
}

// Duration converts simulated time into a wall-clock duration.
func (t VTimeInSec) Duration() time.Duration {
	return time.Duration(math.Round(float64(t) * float64(time.Second)))
}

// millisEpsilon absorbs the error of summing float seconds, so that 5 s
// reached in steps still reads as 5000 ms.
const millisEpsilon = 1e-6

// Millis returns the time in whole milliseconds. Partial milliseconds are
// dropped.
func (t VTimeInSec) Millis() uint64 {
	if t <= 0 {
		return 0
	}

	return uint64(math.Floor(float64(t)*1e3 + millisEpsilon))
}

// An Event is something going to happen in the future.
type Event interface {
	// Return the time that the event should happen
	Time() VTimeInSec

	// Returns the handler that can should handle the event
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary event are
	// handled after all same-time primary events are handled.
	IsSecondary() bool
}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID        string
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	e.secondary = false

	return e
}

// NewSecondaryEventBase creates an EventBase that is handled after all the
// primary events of the same time.
func NewSecondaryEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := NewEventBase(t, handler)
	e.secondary = true

	return e
}

// Time return the time that the event is going to happen
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}
