package stateneuron

import (
	"fmt"
	"math/rand/v2"

	"github.com/sarchlab/stateneuron/emission"
	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/simulation"
)

// seedStream is the PCG stream used when the random source is derived from
// Spec.Seed.
const seedStream = 0x5eed

// Builder creates state neurons.
type Builder struct {
	simulation *simulation.Simulation
	spec       Spec
	src        rand.Source
	sender     PulseSender
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{spec: defaults()}
}

// WithSimulation sets the simulation the neuron joins. The neuron takes the
// resolution of the simulation and is registered with it.
func (b Builder) WithSimulation(sim *simulation.Simulation) Builder {
	b.simulation = sim
	return b
}

// WithSpec sets the parameters.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithRandSource sets the random source of the Poisson draws. Without one,
// a PCG source seeded with Spec.Seed is used.
func (b Builder) WithRandSource(src rand.Source) Builder {
	b.src = src
	return b
}

// WithSender sets where emitted spikes go.
func (b Builder) WithSender(s PulseSender) Builder {
	b.sender = s
	return b
}

// Build creates a neuron with the given name.
func (b Builder) Build(name string) *Comp {
	spec := b.spec
	if b.simulation != nil {
		spec.ResolutionMS = float64(b.simulation.Resolution())
	}

	if err := spec.validate(); err != nil {
		panic(fmt.Sprintf("stateneuron %s: %v", name, err))
	}

	src := b.src
	if src == nil {
		src = rand.NewPCG(spec.Seed, seedStream)
	}

	c := &Comp{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		spec:         spec,
		emitter:      emission.NewEmitter(src),
		sender:       b.sender,
	}
	c.router = pulse.NewRouter(
		pulse.NewRouteTable(spec.NFbk, spec.NPred), spec.DeliveryHorizon)
	c.reset()

	if b.simulation != nil {
		b.simulation.RegisterComponent(c)
	}

	return c
}
