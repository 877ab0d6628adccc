package pulse

import "github.com/sarchlab/stateneuron/sim"

// A Spike is an outgoing pulse emitted by a node during an update slice.
type Spike struct {
	Source string

	// Step is the absolute step the spike is stamped with.
	Step sim.VTimeInStep

	// Lag is the step index inside the update slice that emitted it.
	Lag int64

	TimeMS       float64
	Multiplicity int
}

// A Sender takes spikes emitted by a node and delivers them to the node's
// targets.
type Sender interface {
	Send(s Spike) error
}
