// Package network hosts nodes exchanging spikes over delayed connections and
// drives them epoch by epoch on a discrete-time engine.
package network

import (
	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/sim"
)

// A Node is updated by the kernel once per epoch and exchanges spikes with
// other nodes.
type Node interface {
	hooking.Hookable

	Name() string

	// Update processes the steps origin+from up to, but excluding,
	// origin+to.
	Update(origin sim.VTimeInStep, from, to int64) error

	// Deliver accumulates a pulse with an offset relative to the origin of
	// the node's most recent Update.
	Deliver(p pulse.Pulse) error

	// HasPort tells whether the node accepts pulses on a channel.
	HasPort(port pulse.Port, channel int) bool

	// SetSender sets where the node's spikes go.
	SetSender(s pulse.Sender)
}

// ResolutionAware nodes are told when the step duration changes.
// CheckResolution reports whether SetResolution would accept res without
// changing anything.
type ResolutionAware interface {
	CheckResolution(res sim.Resolution) error
	SetResolution(res sim.Resolution) error
}

// DelayLimited nodes only accept pulses up to MaxDelay steps after the
// step that sent them.
type DelayLimited interface {
	MaxDelay() int64
}

// A Connection carries the spikes of Source to one channel of Target.
type Connection struct {
	Source  string
	Target  string
	Port    pulse.Port
	Channel int
	Weight  float64

	// Delay is the transmission delay in steps.
	Delay int64
}
