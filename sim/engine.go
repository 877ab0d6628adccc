package sim

import "github.com/sarchlab/stateneuron/hooking"

// TimeTeller can be used to get the current step.
type TimeTeller interface {
	CurrentTime() VTimeInStep
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// An Engine keeps the discrete-time simulation running.
type Engine interface {
	hooking.Hookable
	TimeTeller
	EventScheduler

	// Run processes events until none is left or a handler fails.
	Run() error

	// Pause stops dispatching events until Continue is called.
	Pause()

	// Continue resumes a paused engine.
	Continue()
}

// HookPosBeforeEvent is a hook position that triggers before handling an
// event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is a hook position that triggers after handling an event.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}
