package network

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sarchlab/stateneuron/hooking"
	"github.com/sarchlab/stateneuron/pulse"
	"github.com/sarchlab/stateneuron/sim"
)

// A PoissonGenerator emits spikes at a constant rate. Each step it draws a
// Poisson count and sends it as one spike of that multiplicity.
type PoissonGenerator struct {
	*hooking.HookableBase

	name    string
	rateHz  float64
	res     sim.Resolution
	poisson distuv.Poisson
	sender  pulse.Sender
}

// NewPoissonGenerator creates a generator firing at rateHz.
func NewPoissonGenerator(
	name string,
	rateHz float64,
	res sim.Resolution,
	src rand.Source,
) *PoissonGenerator {
	g := &PoissonGenerator{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		res:          res,
		poisson:      distuv.Poisson{Src: src},
	}
	g.SetRate(rateHz)

	return g
}

// Name returns the name of the generator.
func (g *PoissonGenerator) Name() string {
	return g.name
}

// Rate returns the firing rate in Hz.
func (g *PoissonGenerator) Rate() float64 {
	return g.rateHz
}

// SetRate changes the firing rate. Negative rates are treated as 0.
func (g *PoissonGenerator) SetRate(rateHz float64) {
	if !(rateHz > 0) {
		rateHz = 0
	}

	g.rateHz = rateHz
}

// CheckResolution validates a step duration.
func (g *PoissonGenerator) CheckResolution(res sim.Resolution) error {
	return res.Validate()
}

// SetResolution changes the step duration.
func (g *PoissonGenerator) SetResolution(res sim.Resolution) error {
	if err := g.CheckResolution(res); err != nil {
		return err
	}

	g.res = res

	return nil
}

// SetSender sets where spikes go.
func (g *PoissonGenerator) SetSender(s pulse.Sender) {
	g.sender = s
}

// HasPort always returns false. Generators take no input.
func (g *PoissonGenerator) HasPort(pulse.Port, int) bool {
	return false
}

// Deliver rejects every pulse.
func (g *PoissonGenerator) Deliver(p pulse.Pulse) error {
	return fmt.Errorf("%w: generator %s takes no input", pulse.ErrUnknownChannel, g.name)
}

// Update draws one count per step and sends the non-zero ones.
func (g *PoissonGenerator) Update(origin sim.VTimeInStep, from, to int64) error {
	lambda := g.rateHz * float64(g.res) * 1e-3
	if !(lambda > 0) {
		return nil
	}

	g.poisson.Lambda = lambda

	for lag := from; lag < to; lag++ {
		n := int(g.poisson.Rand())
		if n == 0 || g.sender == nil {
			continue
		}

		tick := origin + sim.VTimeInStep(lag) + 1

		err := g.sender.Send(pulse.Spike{
			Source:       g.name,
			Step:         tick,
			Lag:          lag,
			TimeMS:       g.res.MS(tick),
			Multiplicity: n,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

var _ Node = (*PoissonGenerator)(nil)
var _ ResolutionAware = (*PoissonGenerator)(nil)
