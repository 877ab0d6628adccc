// Package pulse routes weighted spikes arriving at the state neuron's input
// populations into per-step, per-channel accumulators.
package pulse

import (
	"errors"
	"fmt"
)

// Port identifies one input population.
type Port int

// The population ports of the state neuron.
const (
	PortFeedback Port = iota
	PortPrediction

	NumPorts
)

func (p Port) String() string {
	switch p {
	case PortFeedback:
		return "fbk"
	case PortPrediction:
		return "pred"
	default:
		return fmt.Sprintf("port(%d)", int(p))
	}
}

// ParsePort converts "fbk" or "pred" into a Port.
func ParsePort(s string) (Port, error) {
	switch s {
	case "fbk", "feedback":
		return PortFeedback, nil
	case "pred", "prediction":
		return PortPrediction, nil
	default:
		return 0, fmt.Errorf("%w: port %q", ErrUnknownChannel, s)
	}
}

var (
	// ErrUnknownChannel is returned for a port or channel with no slot.
	ErrUnknownChannel = errors.New("pulse: invalid channel")

	// ErrNegativeOffset is returned for pulses due before the next step the
	// engine samples.
	ErrNegativeOffset = errors.New("pulse: delivery offset is in the past")

	// ErrBeyondHorizon is returned for pulses due too far in the future to
	// be held by the accumulator.
	ErrBeyondHorizon = errors.New("pulse: delivery offset beyond horizon")

	// ErrBadMultiplicity is returned for pulses with a multiplicity below 1.
	ErrBadMultiplicity = errors.New("pulse: multiplicity must be positive")
)

// A Pulse is a weighted spike delivered to one channel of a population.
type Pulse struct {
	Port         Port
	Channel      int
	Weight       float64
	Multiplicity int

	// Offset is the delivery step relative to the origin of the current
	// update slice of the receiving engine.
	Offset int64
}

// Mass returns weight times multiplicity.
func (p Pulse) Mass() float64 {
	return p.Weight * float64(p.Multiplicity)
}
