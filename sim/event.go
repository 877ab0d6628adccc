package sim

// VTimeInStep is an absolute simulation step index. Step 0 is the origin of
// the simulated time line.
type VTimeInStep int64

// An Event is something going to happen at a future step.
type Event interface {
	// Time returns the step at which the event happens.
	Time() VTimeInStep

	// Handler returns the handler that handles the event.
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary events
	// are handled after all same-step primary events.
	IsSecondary() bool
}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	ID        string
	time      VTimeInStep
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase.
func NewEventBase(t VTimeInStep, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler

	return e
}

// NewSecondaryEventBase creates an EventBase that is handled after the
// primary events of the same step.
func NewSecondaryEventBase(t VTimeInStep, handler Handler) *EventBase {
	e := NewEventBase(t, handler)
	e.secondary = true

	return e
}

// Time returns the step at which the event happens.
func (e EventBase) Time() VTimeInStep {
	return e.time
}

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler processes events.
//
// An event is always bound to one handler, which means the event can only be
// scheduled by that handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}
